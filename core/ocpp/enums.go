package ocpp

// AvailabilityType is the requested connector availability.
type AvailabilityType string

const (
	AvailabilityInoperative AvailabilityType = "Inoperative"
	AvailabilityOperative   AvailabilityType = "Operative"
)

// Valid reports whether t is a known availability type.
func (t AvailabilityType) Valid() bool {
	return t == AvailabilityInoperative || t == AvailabilityOperative
}

// ResetType selects a soft or hard reset.
type ResetType string

const (
	ResetHard ResetType = "Hard"
	ResetSoft ResetType = "Soft"
)

func (t ResetType) Valid() bool { return t == ResetHard || t == ResetSoft }

// UpdateType selects how a local authorization list is applied.
type UpdateType string

const (
	UpdateDifferential UpdateType = "Differential"
	UpdateFull         UpdateType = "Full"
)

func (t UpdateType) Valid() bool { return t == UpdateDifferential || t == UpdateFull }

// AuthorizationStatus is the status of an id tag.
type AuthorizationStatus string

const (
	AuthorizationAccepted     AuthorizationStatus = "Accepted"
	AuthorizationBlocked      AuthorizationStatus = "Blocked"
	AuthorizationExpired      AuthorizationStatus = "Expired"
	AuthorizationInvalid      AuthorizationStatus = "Invalid"
	AuthorizationConcurrentTx AuthorizationStatus = "ConcurrentTx"
)

// ConfigurationKey is one of the standard OCPP 1.5 configuration keys.
type ConfigurationKey string

const (
	KeyHeartBeatInterval         ConfigurationKey = "HeartBeatInterval"
	KeyConnectionTimeOut         ConfigurationKey = "ConnectionTimeOut"
	KeyResetRetries              ConfigurationKey = "ResetRetries"
	KeyBlinkRepeat               ConfigurationKey = "BlinkRepeat"
	KeyLightIntensity            ConfigurationKey = "LightIntensity"
	KeyMeterValueSampleInterval  ConfigurationKey = "MeterValueSampleInterval"
	KeyClockAlignedDataInterval  ConfigurationKey = "ClockAlignedDataInterval"
	KeyMeterValuesSampledData    ConfigurationKey = "MeterValuesSampledData"
	KeyMeterValuesAlignedData    ConfigurationKey = "MeterValuesAlignedData"
	KeyStopTxnSampledData        ConfigurationKey = "StopTxnSampledData"
	KeyStopTxnAlignedData        ConfigurationKey = "StopTxnAlignedData"
)

var configurationKeys = map[ConfigurationKey]struct{}{
	KeyHeartBeatInterval:        {},
	KeyConnectionTimeOut:        {},
	KeyResetRetries:             {},
	KeyBlinkRepeat:              {},
	KeyLightIntensity:           {},
	KeyMeterValueSampleInterval: {},
	KeyClockAlignedDataInterval: {},
	KeyMeterValuesSampledData:   {},
	KeyMeterValuesAlignedData:   {},
	KeyStopTxnSampledData:       {},
	KeyStopTxnAlignedData:       {},
}

// Valid reports whether k is part of the OCPP 1.5 key set.
func (k ConfigurationKey) Valid() bool {
	_, ok := configurationKeys[k]
	return ok
}

// Response status values shared by several operations.
const (
	StatusAccepted         = "Accepted"
	StatusRejected         = "Rejected"
	StatusScheduled        = "Scheduled"
	StatusNotSupported     = "NotSupported"
	StatusFaulted          = "Faulted"
	StatusOccupied         = "Occupied"
	StatusUnavailable      = "Unavailable"
	StatusFailed           = "Failed"
	StatusHashError        = "HashError"
	StatusVersionMismatch  = "VersionMismatch"
	StatusUnknownMessageID = "UnknownMessageId"
	StatusUnknownVendorID  = "UnknownVendorId"
)
