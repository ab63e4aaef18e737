// Package insights provides a resilient Go client for the UniFi Network
// Integration API: sites, devices, clients, device actions, device
// statistics and application info.
//
// # API Access
//
// The API is accessed locally through your UniFi controller at the path:
//
//	https://<controller-ip>/proxy/network/integration/v1/
//
// # Authentication
//
// All requests require an API key generated from your UniFi controller:
//
//  1. Navigate to Settings > Control Plane > Integrations
//  2. Create a new API key
//  3. The client sends it in the X-API-Key header on every request
//
// # Resilience
//
// Idempotent requests are retried on transient failures (connection errors,
// 5xx, 429) with exponential backoff and jitter; 429 responses honor the
// server's Retry-After header. Device actions are never retried, and a
// timed-out action surfaces as KindAmbiguousOutcome since it may have
// executed on the controller. All failures are normalized into *Error with
// a single Kind, and the controller's requestId is preserved verbatim for
// support escalation.
//
// # Pagination
//
// List endpoints return one Page per call. Paginator walks an entire
// listing lazily, advancing by the observed page count so servers returning
// short pages neither skip nor repeat items:
//
//	pager := client.DevicesPaginator(siteID, 25)
//	for pager.HasMore() {
//	    page, err := pager.NextPage(ctx)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for _, device := range page.Data {
//	        fmt.Println(device.Name)
//	    }
//	}
//
// # Basic Usage
//
//	client, err := insights.New("https://192.168.1.1", "your-api-key")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sites, err := client.ListSites(context.Background(), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, site := range sites.Data {
//	    fmt.Printf("Site: %s (ID: %s)\n", site.Name, site.ID)
//	}
package insights
