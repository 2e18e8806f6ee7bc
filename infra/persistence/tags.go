package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

// SaveTag inserts or replaces an id tag.
func (s *Store) SaveTag(ctx context.Context, t TagModel) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&t).Error
	if err != nil {
		return fmt.Errorf("save tag %s: %w", t.IDTag, err)
	}
	return nil
}

func (s *Store) GetParentIDTag(ctx context.Context, idTag string) (string, error) {
	var t TagModel
	err := s.db.WithContext(ctx).Select("parent_id_tag").Where("id_tag = ?", idTag).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup tag %s: %w", idTag, err)
	}
	return t.ParentIDTag, nil
}

func (s *Store) GetAuthData(ctx context.Context, idTags []string) ([]ocpp.AuthorisationData, error) {
	if len(idTags) == 0 {
		return nil, nil
	}
	var tags []TagModel
	if err := s.db.WithContext(ctx).Where("id_tag IN ?", idTags).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	byTag := make(map[string]TagModel, len(tags))
	for _, t := range tags {
		byTag[t.IDTag] = t
	}
	out := make([]ocpp.AuthorisationData, 0, len(tags))
	for _, id := range idTags {
		if t, ok := byTag[id]; ok {
			out = append(out, s.authData(t))
		}
	}
	return out, nil
}

func (s *Store) GetAuthDataOfAllUsers(ctx context.Context) ([]ocpp.AuthorisationData, error) {
	var tags []TagModel
	if err := s.db.WithContext(ctx).Order("id_tag").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	out := make([]ocpp.AuthorisationData, 0, len(tags))
	for _, t := range tags {
		out = append(out, s.authData(t))
	}
	return out, nil
}

func (s *Store) authData(t TagModel) ocpp.AuthorisationData {
	info := &ocpp.IDTagInfo{Status: s.status(t), ParentIDTag: t.ParentIDTag}
	if t.ExpiryDate != nil {
		exp := t.ExpiryDate.UTC()
		info.ExpiryDate = &exp
	}
	return ocpp.AuthorisationData{IDTag: t.IDTag, IDTagInfo: info}
}

func (s *Store) status(t TagModel) ocpp.AuthorizationStatus {
	switch {
	case t.Blocked:
		return ocpp.AuthorizationBlocked
	case t.ExpiryDate != nil && !t.ExpiryDate.After(s.now()):
		return ocpp.AuthorizationExpired
	case t.InTransaction:
		return ocpp.AuthorizationConcurrentTx
	default:
		return ocpp.AuthorizationAccepted
	}
}
