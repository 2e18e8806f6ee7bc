package ocpp

import "time"

type ChangeAvailabilityRequest struct {
	ConnectorID int              `xml:"connectorId" json:"connectorId"`
	Type        AvailabilityType `xml:"type" json:"type"`
}

type ChangeConfigurationRequest struct {
	Key   string `xml:"key" json:"key"`
	Value string `xml:"value" json:"value"`
}

type ClearCacheRequest struct{}

type GetDiagnosticsRequest struct {
	Location      string     `xml:"location" json:"location"`
	StartTime     *time.Time `xml:"startTime,omitempty" json:"startTime,omitempty"`
	StopTime      *time.Time `xml:"stopTime,omitempty" json:"stopTime,omitempty"`
	Retries       *int       `xml:"retries,omitempty" json:"retries,omitempty"`
	RetryInterval *int       `xml:"retryInterval,omitempty" json:"retryInterval,omitempty"`
}

type RemoteStartTransactionRequest struct {
	IDTag       string `xml:"idTag" json:"idTag"`
	ConnectorID *int   `xml:"connectorId,omitempty" json:"connectorId,omitempty"`
}

type RemoteStopTransactionRequest struct {
	TransactionID int `xml:"transactionId" json:"transactionId"`
}

type ResetRequest struct {
	Type ResetType `xml:"type" json:"type"`
}

type UnlockConnectorRequest struct {
	ConnectorID int `xml:"connectorId" json:"connectorId"`
}

type UpdateFirmwareRequest struct {
	RetrieveDate  time.Time `xml:"retrieveDate" json:"retrieveDate"`
	Location      string    `xml:"location" json:"location"`
	Retries       *int      `xml:"retries,omitempty" json:"retries,omitempty"`
	RetryInterval *int      `xml:"retryInterval,omitempty" json:"retryInterval,omitempty"`
}

// DataTransferRequest carries vendor specific data. Its content is opaque to
// the central system.
type DataTransferRequest struct {
	VendorID  string `xml:"vendorId" json:"vendorId"`
	MessageID string `xml:"messageId,omitempty" json:"messageId,omitempty"`
	Data      string `xml:"data,omitempty" json:"data,omitempty"`
}

type GetConfigurationRequest struct {
	Key []string `xml:"key,omitempty" json:"key,omitempty"`
}

type GetLocalListVersionRequest struct{}

// IDTagInfo describes the authorization state of an id tag.
type IDTagInfo struct {
	Status      AuthorizationStatus `xml:"status" json:"status"`
	ExpiryDate  *time.Time          `xml:"expiryDate,omitempty" json:"expiryDate,omitempty"`
	ParentIDTag string              `xml:"parentIdTag,omitempty" json:"parentIdTag,omitempty"`
}

// AuthorisationData is one entry of a local authorization list. An entry
// without IDTagInfo removes the tag from the list in a differential update.
type AuthorisationData struct {
	IDTag     string     `xml:"idTag" json:"idTag"`
	IDTagInfo *IDTagInfo `xml:"idTagInfo,omitempty" json:"idTagInfo,omitempty"`
}

type SendLocalListRequest struct {
	ListVersion            int                 `xml:"listVersion" json:"listVersion"`
	LocalAuthorisationList []AuthorisationData `xml:"localAuthorisationList,omitempty" json:"localAuthorisationList,omitempty"`
	Hash                   string              `xml:"hash,omitempty" json:"hash,omitempty"`
	UpdateType             UpdateType          `xml:"updateType" json:"updateType"`
}

type ReserveNowRequest struct {
	ConnectorID   int       `xml:"connectorId" json:"connectorId"`
	ExpiryDate    time.Time `xml:"expiryDate" json:"expiryDate"`
	IDTag         string    `xml:"idTag" json:"idTag"`
	ParentIDTag   string    `xml:"parentIdTag,omitempty" json:"parentIdTag,omitempty"`
	ReservationID int       `xml:"reservationId" json:"reservationId"`
}

type CancelReservationRequest struct {
	ReservationID int `xml:"reservationId" json:"reservationId"`
}
