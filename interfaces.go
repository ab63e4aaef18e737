package insights

import "context"

// InsightsAPIClient defines the interface for Network Integration API
// operations. It enables consumers to create mock implementations for
// testing.
//
// All methods mirror the corresponding methods in APIClient to ensure
// compatibility and ease of use.
//
// Example usage with mocking frameworks:
//
//	// Using testify/mock:
//	type MockClient struct {
//	    mock.Mock
//	}
//
//	func (m *MockClient) ListSites(ctx context.Context, params *insights.ListParams) (*insights.Page[insights.Site], error) {
//	    args := m.Called(ctx, params)
//	    return args.Get(0).(*insights.Page[insights.Site]), args.Error(1)
//	}
//
//nolint:revive // InsightsAPIClient is intentionally explicit to avoid confusion with APIClient struct
type InsightsAPIClient interface {
	// Sites operations

	// ListSites retrieves one page of sites configured on the controller.
	ListSites(ctx context.Context, params *ListParams) (*Page[Site], error)

	// Devices operations

	// ListDevices retrieves one page of devices for a specific site.
	ListDevices(ctx context.Context, siteID string, params *ListParams) (*Page[Device], error)

	// GetDevice retrieves detailed information about a specific device.
	GetDevice(ctx context.Context, siteID, deviceID string) (*DeviceDetails, error)

	// GetDeviceStatistics retrieves the latest statistics snapshot for a device.
	GetDeviceStatistics(ctx context.Context, siteID, deviceID string) (*DeviceStatistics, error)

	// ExecuteDeviceAction executes an action on a device. Never retried.
	ExecuteDeviceAction(ctx context.Context, siteID, deviceID string, action DeviceAction) error

	// RestartDevice restarts a device.
	RestartDevice(ctx context.Context, siteID, deviceID string) error

	// Clients operations

	// ListClients retrieves one page of clients connected through a site.
	ListClients(ctx context.Context, siteID string, params *ListParams) (*Page[NetworkClient], error)

	// Application operations

	// GetApplicationInfo retrieves version information about the Network application.
	GetApplicationInfo(ctx context.Context) (*ApplicationInfo, error)

	// ValidateAPIKey checks whether the configured API key is accepted.
	ValidateAPIKey(ctx context.Context) (bool, error)
}

// Compile-time check that APIClient satisfies the interface.
var _ InsightsAPIClient = (*APIClient)(nil)
