package chargepoint

import (
	"time"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

// The prepare functions turn validated parameters into requests. Values that
// need a repository lookup are resolved by the caller and passed in.

func prepareChangeAvailability(p ChangeAvailabilityParams) ocpp.ChangeAvailabilityRequest {
	return ocpp.ChangeAvailabilityRequest{ConnectorID: p.ConnectorID, Type: p.AvailType}
}

func prepareChangeConfiguration(p ChangeConfigurationParams) ocpp.ChangeConfigurationRequest {
	return ocpp.ChangeConfigurationRequest{Key: string(p.ConfKey), Value: p.Value}
}

func prepareClearCache() ocpp.ClearCacheRequest { return ocpp.ClearCacheRequest{} }

func prepareGetDiagnostics(p GetDiagnosticsParams) ocpp.GetDiagnosticsRequest {
	return ocpp.GetDiagnosticsRequest{
		Location:      p.Location,
		StartTime:     cloneTime(p.Start),
		StopTime:      cloneTime(p.Stop),
		Retries:       cloneInt(p.Retries),
		RetryInterval: cloneInt(p.RetryInterval),
	}
}

func prepareRemoteStartTransaction(p RemoteStartTransactionParams) ocpp.RemoteStartTransactionRequest {
	return ocpp.RemoteStartTransactionRequest{IDTag: p.IDTag, ConnectorID: cloneInt(p.ConnectorID)}
}

func prepareRemoteStopTransaction(p RemoteStopTransactionParams) ocpp.RemoteStopTransactionRequest {
	return ocpp.RemoteStopTransactionRequest{TransactionID: p.TransactionID}
}

func prepareReset(p ResetParams) ocpp.ResetRequest {
	return ocpp.ResetRequest{Type: p.ResetType}
}

func prepareUnlockConnector(p UnlockConnectorParams) ocpp.UnlockConnectorRequest {
	return ocpp.UnlockConnectorRequest{ConnectorID: p.ConnectorID}
}

func prepareUpdateFirmware(p UpdateFirmwareParams) ocpp.UpdateFirmwareRequest {
	return ocpp.UpdateFirmwareRequest{
		RetrieveDate:  p.Retrieve.UTC(),
		Location:      p.Location,
		Retries:       cloneInt(p.Retries),
		RetryInterval: cloneInt(p.RetryInterval),
	}
}

func prepareDataTransfer(p DataTransferParams) ocpp.DataTransferRequest {
	return ocpp.DataTransferRequest{VendorID: p.VendorID, MessageID: p.MessageID, Data: p.Data}
}

func prepareGetConfiguration(p GetConfigurationParams) ocpp.GetConfigurationRequest {
	if len(p.ConfKeys) == 0 {
		return ocpp.GetConfigurationRequest{}
	}
	keys := make([]string, len(p.ConfKeys))
	for i, k := range p.ConfKeys {
		keys[i] = string(k)
	}
	return ocpp.GetConfigurationRequest{Key: keys}
}

func prepareGetLocalListVersion() ocpp.GetLocalListVersionRequest {
	return ocpp.GetLocalListVersionRequest{}
}

// prepareSendLocalList builds the list push. For a differential update the
// entries are the bare delete-list tags in order followed by auth, which holds
// the entries of the add/update list. For a full update auth is the complete
// authorization set.
func prepareSendLocalList(p SendLocalListParams, auth []ocpp.AuthorisationData) ocpp.SendLocalListRequest {
	var entries []ocpp.AuthorisationData
	if p.UpdateType == ocpp.UpdateDifferential {
		entries = make([]ocpp.AuthorisationData, 0, len(p.DeleteList)+len(auth))
		for _, tag := range p.DeleteList {
			entries = append(entries, ocpp.AuthorisationData{IDTag: tag})
		}
	} else {
		entries = make([]ocpp.AuthorisationData, 0, len(auth))
	}
	for _, a := range auth {
		entries = append(entries, cloneAuth(a))
	}
	return ocpp.SendLocalListRequest{
		ListVersion:            p.ListVersion,
		UpdateType:             p.UpdateType,
		LocalAuthorisationList: entries,
	}
}

func prepareReserveNow(p ReserveNowParams, reservationID int, parentIDTag string) ocpp.ReserveNowRequest {
	return ocpp.ReserveNowRequest{
		ConnectorID:   p.ConnectorID,
		ExpiryDate:    p.Expiry.UTC(),
		IDTag:         p.IDTag,
		ParentIDTag:   parentIDTag,
		ReservationID: reservationID,
	}
}

func prepareCancelReservation(p CancelReservationParams) ocpp.CancelReservationRequest {
	return ocpp.CancelReservationRequest{ReservationID: p.ReservationID}
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := v.UTC()
	return &c
}

func cloneAuth(a ocpp.AuthorisationData) ocpp.AuthorisationData {
	if a.IDTagInfo == nil {
		return a
	}
	info := *a.IDTagInfo
	info.ExpiryDate = cloneTime(a.IDTagInfo.ExpiryDate)
	a.IDTagInfo = &info
	return a
}
