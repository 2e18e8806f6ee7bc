package ocpp

// StatusResponse is implemented by every response that carries a status
// field.
type StatusResponse interface {
	StatusValue() string
}

type ChangeAvailabilityResponse struct {
	Status string `xml:"status" json:"status"`
}

type ChangeConfigurationResponse struct {
	Status string `xml:"status" json:"status"`
}

type ClearCacheResponse struct {
	Status string `xml:"status" json:"status"`
}

type GetDiagnosticsResponse struct {
	FileName string `xml:"fileName,omitempty" json:"fileName,omitempty"`
}

type RemoteStartTransactionResponse struct {
	Status string `xml:"status" json:"status"`
}

type RemoteStopTransactionResponse struct {
	Status string `xml:"status" json:"status"`
}

type ResetResponse struct {
	Status string `xml:"status" json:"status"`
}

type UnlockConnectorResponse struct {
	Status string `xml:"status" json:"status"`
}

type UpdateFirmwareResponse struct{}

type DataTransferResponse struct {
	Status string `xml:"status" json:"status"`
	Data   string `xml:"data,omitempty" json:"data,omitempty"`
}

// KeyValue is one configuration entry reported by a charge point.
type KeyValue struct {
	Key      string `xml:"key" json:"key"`
	Readonly bool   `xml:"readonly" json:"readonly"`
	Value    string `xml:"value,omitempty" json:"value,omitempty"`
}

type GetConfigurationResponse struct {
	ConfigurationKey []KeyValue `xml:"configurationKey,omitempty" json:"configurationKey,omitempty"`
	UnknownKey       []string   `xml:"unknownKey,omitempty" json:"unknownKey,omitempty"`
}

type GetLocalListVersionResponse struct {
	ListVersion int `xml:"listVersion" json:"listVersion"`
}

type SendLocalListResponse struct {
	Status string `xml:"status" json:"status"`
	Hash   string `xml:"hash,omitempty" json:"hash,omitempty"`
}

type ReserveNowResponse struct {
	Status string `xml:"status" json:"status"`
}

type CancelReservationResponse struct {
	Status string `xml:"status" json:"status"`
}

func (r *ChangeAvailabilityResponse) StatusValue() string     { return r.Status }
func (r *ChangeConfigurationResponse) StatusValue() string    { return r.Status }
func (r *ClearCacheResponse) StatusValue() string             { return r.Status }
func (r *RemoteStartTransactionResponse) StatusValue() string { return r.Status }
func (r *RemoteStopTransactionResponse) StatusValue() string  { return r.Status }
func (r *ResetResponse) StatusValue() string                  { return r.Status }
func (r *UnlockConnectorResponse) StatusValue() string        { return r.Status }
func (r *DataTransferResponse) StatusValue() string           { return r.Status }
func (r *SendLocalListResponse) StatusValue() string          { return r.Status }
func (r *ReserveNowResponse) StatusValue() string             { return r.Status }
func (r *CancelReservationResponse) StatusValue() string      { return r.Status }

// StatusOf returns the status carried by resp, or "" when it has none.
func StatusOf(resp any) string {
	if s, ok := resp.(StatusResponse); ok {
		return s.StatusValue()
	}
	return ""
}
