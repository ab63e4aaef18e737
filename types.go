package insights

// Site is a managed network deployment, the top-level scope for devices and
// clients.
type Site struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DeviceState describes the adoption/connectivity state of a device.
type DeviceState string

// Device states reported by the controller.
const (
	DeviceStateOnline          DeviceState = "ONLINE"
	DeviceStateOffline         DeviceState = "OFFLINE"
	DeviceStatePendingAdoption DeviceState = "PENDING_ADOPTION"
	DeviceStateAdopting        DeviceState = "ADOPTING"
	DeviceStateUpdating        DeviceState = "UPDATING"
	DeviceStateGettingReady    DeviceState = "GETTING_READY"
	DeviceStateDeleting        DeviceState = "DELETING"
)

// Device is the summary form of a managed device (switch, access point,
// gateway) as returned by list endpoints.
type Device struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Model      string      `json:"model"`
	MacAddress string      `json:"macAddress"`
	IPAddress  string      `json:"ipAddress"`
	State      DeviceState `json:"state"`
	Features   []string    `json:"features"`
	Interfaces []string    `json:"interfaces"`
}

// DeviceDetails is the detailed form of a device returned by the single
// device endpoint. It extends the summary with firmware information, the
// uplink reference and per-interface details.
type DeviceDetails struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Model             string            `json:"model"`
	MacAddress        string            `json:"macAddress"`
	IPAddress         string            `json:"ipAddress"`
	State             DeviceState       `json:"state"`
	FirmwareVersion   string            `json:"firmwareVersion"`
	FirmwareUpdatable bool              `json:"firmwareUpdatable"`
	Uplink            *DeviceUplink     `json:"uplink,omitempty"`
	Features          []string          `json:"features"`
	Interfaces        *DeviceInterfaces `json:"interfaces,omitempty"`
}

// DeviceUplink is a weak reference to the upstream device.
type DeviceUplink struct {
	DeviceID string `json:"deviceId"`
}

// DeviceInterfaces groups the physical interfaces of a device.
type DeviceInterfaces struct {
	Ports  []PortInterface  `json:"ports"`
	Radios []RadioInterface `json:"radios"`
}

// PortInterface describes a wired port on a device.
type PortInterface struct {
	Idx          int    `json:"idx"`
	State        string `json:"state"`
	Connector    string `json:"connector"`
	MaxSpeedMbps int    `json:"maxSpeedMbps"`
	SpeedMbps    int    `json:"speedMbps"`
}

// RadioInterface describes a wireless radio on a device.
type RadioInterface struct {
	WlanStandard    string  `json:"wlanStandard"`
	FrequencyGHz    float64 `json:"frequencyGHz"`
	ChannelWidthMHz int     `json:"channelWidthMHz"`
	Channel         int     `json:"channel"`
}

// ClientType distinguishes how a network client is connected.
type ClientType string

// Client connection types.
const (
	ClientTypeWired    ClientType = "WIRED"
	ClientTypeWireless ClientType = "WIRELESS"
)

// NetworkClient is an end-user client (wired or wireless) connected through
// a device. UplinkDeviceID is a weak reference to that device.
type NetworkClient struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	IPAddress      string     `json:"ipAddress"`
	MacAddress     string     `json:"macAddress"`
	Type           ClientType `json:"type"`
	UplinkDeviceID string     `json:"uplinkDeviceId"`
	ConnectedAt    string     `json:"connectedAt,omitempty"`
}

// DeviceStatistics is the latest statistics snapshot for a device.
type DeviceStatistics struct {
	UptimeSec            int64            `json:"uptimeSec"`
	CPUUtilizationPct    float64          `json:"cpuUtilizationPct"`
	MemoryUtilizationPct float64          `json:"memoryUtilizationPct"`
	LoadAverage1Min      float64          `json:"loadAverage1Min"`
	LoadAverage5Min      float64          `json:"loadAverage5Min"`
	LoadAverage15Min     float64          `json:"loadAverage15Min"`
	Uplink               *UplinkStatistic `json:"uplink,omitempty"`
}

// UplinkStatistic carries current uplink throughput rates.
type UplinkStatistic struct {
	TxRateBps int64 `json:"txRateBps"`
	RxRateBps int64 `json:"rxRateBps"`
}

// ApplicationInfo describes the Network application running on the
// controller.
type ApplicationInfo struct {
	ApplicationVersion string `json:"applicationVersion"`
}

// DeviceAction is an action that can be executed on a device.
type DeviceAction string

// Supported device actions.
const (
	DeviceActionRestart DeviceAction = "RESTART"
)

// actionRequest is the wire body for the device actions endpoint.
type actionRequest struct {
	Action DeviceAction `json:"action"`
}

// actionResponse is the wire acknowledgement for a device action.
type actionResponse struct {
	Status string `json:"status"`
}

// Page is one bounded slice of a list result with pagination metadata.
// Count always equals len(Data); Offset+Count never exceeds TotalCount
// except transiently when items are removed server-side between pages.
type Page[T any] struct {
	Offset     int `json:"offset"`
	Limit      int `json:"limit"`
	Count      int `json:"count"`
	TotalCount int `json:"totalCount"`
	Data       []T `json:"data"`
}

// ListParams sets the pagination window for a single list call.
// A nil ListParams lets the controller apply its defaults.
type ListParams struct {
	// Offset is the zero-based index of the first item to return.
	Offset int

	// Limit bounds the number of items in the returned page.
	Limit int
}
