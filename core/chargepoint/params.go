package chargepoint

import (
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

// Params is implemented by every operation parameter object.
type Params interface {
	Recipients() []ocpp.ChargePointSelect
	Validate(now time.Time) error
}

// MultipleChargePointSelect targets one or more charge points.
type MultipleChargePointSelect struct {
	ChargePoints []ocpp.ChargePointSelect `json:"charge_points"`
}

func (m MultipleChargePointSelect) Recipients() []ocpp.ChargePointSelect { return m.ChargePoints }

func (m MultipleChargePointSelect) Validate(time.Time) error {
	return validateRecipients(m.ChargePoints)
}

// SingleChargePointSelect targets exactly one charge point.
type SingleChargePointSelect struct {
	ChargePoints []ocpp.ChargePointSelect `json:"charge_points"`
}

func (s SingleChargePointSelect) Recipients() []ocpp.ChargePointSelect { return s.ChargePoints }

func (s SingleChargePointSelect) Validate(time.Time) error {
	if err := validateRecipients(s.ChargePoints); err != nil {
		return err
	}
	if len(s.ChargePoints) != 1 {
		return invalid("operation targets exactly one charge point, got %d", len(s.ChargePoints))
	}
	return nil
}

func validateRecipients(cps []ocpp.ChargePointSelect) error {
	if len(cps) == 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrNoRecipients)
	}
	for i, cp := range cps {
		if strings.TrimSpace(cp.ChargeBoxID) == "" {
			return invalid("charge_points[%d]: charge_box_id is empty", i)
		}
		if strings.TrimSpace(cp.EndpointAddress) == "" {
			return invalid("charge_points[%d]: endpoint_address is empty", i)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func validateRetries(retries, interval *int) error {
	if retries != nil && *retries < 0 {
		return invalid("retries must not be negative")
	}
	if interval != nil && *interval < 0 {
		return invalid("retry_interval must not be negative")
	}
	return nil
}

type ChangeAvailabilityParams struct {
	MultipleChargePointSelect
	ConnectorID int                   `json:"connector_id"`
	AvailType   ocpp.AvailabilityType `json:"availability_type"`
}

func (p ChangeAvailabilityParams) Validate(now time.Time) error {
	if err := p.MultipleChargePointSelect.Validate(now); err != nil {
		return err
	}
	if p.ConnectorID < 0 {
		return invalid("connector_id must not be negative")
	}
	if !p.AvailType.Valid() {
		return invalid("unknown availability type %q", p.AvailType)
	}
	return nil
}

type ChangeConfigurationParams struct {
	MultipleChargePointSelect
	ConfKey ocpp.ConfigurationKey `json:"key"`
	Value   string                `json:"value"`
}

func (p ChangeConfigurationParams) Validate(now time.Time) error {
	if err := p.MultipleChargePointSelect.Validate(now); err != nil {
		return err
	}
	if !p.ConfKey.Valid() {
		return invalid("unknown configuration key %q", p.ConfKey)
	}
	if p.Value == "" {
		return invalid("value is empty")
	}
	return nil
}

type GetDiagnosticsParams struct {
	MultipleChargePointSelect
	Location      string     `json:"location"`
	Retries       *int       `json:"retries,omitempty"`
	RetryInterval *int       `json:"retry_interval,omitempty"`
	Start         *time.Time `json:"start,omitempty"`
	Stop          *time.Time `json:"stop,omitempty"`
}

func (p GetDiagnosticsParams) Validate(now time.Time) error {
	if err := p.MultipleChargePointSelect.Validate(now); err != nil {
		return err
	}
	if p.Location == "" {
		return invalid("location is empty")
	}
	if p.Start != nil && p.Stop != nil && p.Stop.Before(*p.Start) {
		return invalid("stop is before start")
	}
	return validateRetries(p.Retries, p.RetryInterval)
}

type RemoteStartTransactionParams struct {
	SingleChargePointSelect
	IDTag       string `json:"id_tag"`
	ConnectorID *int   `json:"connector_id,omitempty"`
}

func (p RemoteStartTransactionParams) Validate(now time.Time) error {
	if err := p.SingleChargePointSelect.Validate(now); err != nil {
		return err
	}
	if p.IDTag == "" {
		return invalid("id_tag is empty")
	}
	if p.ConnectorID != nil && *p.ConnectorID <= 0 {
		return invalid("connector_id must be positive")
	}
	return nil
}

type RemoteStopTransactionParams struct {
	SingleChargePointSelect
	TransactionID int `json:"transaction_id"`
}

func (p RemoteStopTransactionParams) Validate(now time.Time) error {
	if err := p.SingleChargePointSelect.Validate(now); err != nil {
		return err
	}
	if p.TransactionID <= 0 {
		return invalid("transaction_id must be positive")
	}
	return nil
}

type ResetParams struct {
	MultipleChargePointSelect
	ResetType ocpp.ResetType `json:"reset_type"`
}

func (p ResetParams) Validate(now time.Time) error {
	if err := p.MultipleChargePointSelect.Validate(now); err != nil {
		return err
	}
	if !p.ResetType.Valid() {
		return invalid("unknown reset type %q", p.ResetType)
	}
	return nil
}

type UnlockConnectorParams struct {
	SingleChargePointSelect
	ConnectorID int `json:"connector_id"`
}

func (p UnlockConnectorParams) Validate(now time.Time) error {
	if err := p.SingleChargePointSelect.Validate(now); err != nil {
		return err
	}
	if p.ConnectorID <= 0 {
		return invalid("connector_id must be positive")
	}
	return nil
}

type UpdateFirmwareParams struct {
	MultipleChargePointSelect
	Location      string    `json:"location"`
	Retrieve      time.Time `json:"retrieve"`
	Retries       *int      `json:"retries,omitempty"`
	RetryInterval *int      `json:"retry_interval,omitempty"`
}

func (p UpdateFirmwareParams) Validate(now time.Time) error {
	if err := p.MultipleChargePointSelect.Validate(now); err != nil {
		return err
	}
	if p.Location == "" {
		return invalid("location is empty")
	}
	if p.Retrieve.IsZero() {
		return invalid("retrieve date is missing")
	}
	return validateRetries(p.Retries, p.RetryInterval)
}

type DataTransferParams struct {
	MultipleChargePointSelect
	VendorID  string `json:"vendor_id"`
	MessageID string `json:"message_id,omitempty"`
	Data      string `json:"data,omitempty"`
}

func (p DataTransferParams) Validate(now time.Time) error {
	if err := p.MultipleChargePointSelect.Validate(now); err != nil {
		return err
	}
	if p.VendorID == "" {
		return invalid("vendor_id is empty")
	}
	return nil
}

type GetConfigurationParams struct {
	MultipleChargePointSelect
	ConfKeys []ocpp.ConfigurationKey `json:"keys,omitempty"`
}

func (p GetConfigurationParams) Validate(now time.Time) error {
	if err := p.MultipleChargePointSelect.Validate(now); err != nil {
		return err
	}
	for _, k := range p.ConfKeys {
		if !k.Valid() {
			return invalid("unknown configuration key %q", k)
		}
	}
	return nil
}

type SendLocalListParams struct {
	MultipleChargePointSelect
	ListVersion   int             `json:"list_version"`
	UpdateType    ocpp.UpdateType `json:"update_type"`
	DeleteList    []string        `json:"delete_list,omitempty"`
	AddUpdateList []string        `json:"add_update_list,omitempty"`
}

func (p SendLocalListParams) Validate(now time.Time) error {
	if err := p.MultipleChargePointSelect.Validate(now); err != nil {
		return err
	}
	if p.ListVersion < 0 {
		return invalid("list_version must not be negative")
	}
	if !p.UpdateType.Valid() {
		return invalid("unknown update type %q", p.UpdateType)
	}
	if p.UpdateType == ocpp.UpdateDifferential {
		seen := make(map[string]struct{}, len(p.DeleteList))
		for _, t := range p.DeleteList {
			if t == "" {
				return invalid("delete_list contains an empty id tag")
			}
			seen[t] = struct{}{}
		}
		for _, t := range p.AddUpdateList {
			if t == "" {
				return invalid("add_update_list contains an empty id tag")
			}
			if _, ok := seen[t]; ok {
				return invalid("id tag %q is both deleted and updated", t)
			}
		}
	}
	return nil
}

type ReserveNowParams struct {
	SingleChargePointSelect
	ConnectorID int       `json:"connector_id"`
	Expiry      time.Time `json:"expiry"`
	IDTag       string    `json:"id_tag"`
}

func (p ReserveNowParams) Validate(now time.Time) error {
	if err := p.SingleChargePointSelect.Validate(now); err != nil {
		return err
	}
	if p.ConnectorID < 0 {
		return invalid("connector_id must not be negative")
	}
	if p.IDTag == "" {
		return invalid("id_tag is empty")
	}
	if !p.Expiry.After(now) {
		return invalid("expiry must be in the future")
	}
	return nil
}

type CancelReservationParams struct {
	SingleChargePointSelect
	ReservationID int `json:"reservation_id"`
}

func (p CancelReservationParams) Validate(now time.Time) error {
	if err := p.SingleChargePointSelect.Validate(now); err != nil {
		return err
	}
	if p.ReservationID <= 0 {
		return invalid("reservation_id must be positive")
	}
	return nil
}
