package youtube

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// testVideoID is a long-lived public video used to verify that the extractor
// path works end to end.
const testVideoID = "dQw4w9WgXcQ"

// NetworkCheck is the outcome of one connectivity diagnostic step.
type NetworkCheck struct {
	Name   string
	OK     bool
	Detail string
}

// DiagnoseNetwork runs the connectivity checks a failing sync usually comes
// down to: DNS, reachability of the site, a runnable yt-dlp, and a probe of
// a known-good video. Checks keep going after a failure so the report shows
// everything that is broken, not just the first thing.
func DiagnoseNetwork(ctx context.Context, y *Ytdlp) []NetworkCheck {
	var checks []NetworkCheck

	resolver := &net.Resolver{}
	lookupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	addrs, err := resolver.LookupHost(lookupCtx, "www.youtube.com")
	cancel()
	if err != nil {
		checks = append(checks, NetworkCheck{Name: "dns", Detail: err.Error()})
	} else {
		checks = append(checks, NetworkCheck{Name: "dns", OK: true,
			Detail: fmt.Sprintf("resolved %d addresses", len(addrs))})
	}

	client := &http.Client{Timeout: 15 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.youtube.com", nil)
	if err == nil {
		resp, herr := client.Do(req)
		if herr != nil {
			checks = append(checks, NetworkCheck{Name: "http", Detail: herr.Error()})
		} else {
			resp.Body.Close()
			checks = append(checks, NetworkCheck{Name: "http", OK: resp.StatusCode < 500,
				Detail: resp.Status})
		}
	} else {
		checks = append(checks, NetworkCheck{Name: "http", Detail: err.Error()})
	}

	version, err := y.Version(ctx)
	if err != nil {
		checks = append(checks, NetworkCheck{Name: "yt-dlp", Detail: "not installed or not runnable"})
	} else {
		checks = append(checks, NetworkCheck{Name: "yt-dlp", OK: true, Detail: version})
	}

	prober := NewProber(y, 0)
	ok, err := prober.IsAvailable(ctx, testVideoID)
	switch {
	case err != nil:
		checks = append(checks, NetworkCheck{Name: "extractor", Detail: err.Error()})
	case !ok:
		checks = append(checks, NetworkCheck{Name: "extractor",
			Detail: "test video reported unavailable"})
	default:
		checks = append(checks, NetworkCheck{Name: "extractor", OK: true,
			Detail: "test video fetchable"})
	}

	return checks
}
