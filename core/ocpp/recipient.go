package ocpp

// ChargePointSelect names one charge point and the endpoint it is reachable at.
type ChargePointSelect struct {
	ChargeBoxID     string `json:"charge_box_id"`
	EndpointAddress string `json:"endpoint_address"`
}
