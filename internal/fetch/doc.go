// Package fetch provides the streaming HTTP client used to pull bytes from
// download sources.
//
// The client is tuned for a single long-lived streaming GET at a time rather
// than request fan-out: no overall request timeout, a dial timeout for
// connection establishment, and a per-read stall timeout that cancels the
// in-flight request when a source stops sending. The stall timeout doubles as
// the loop's cooperative yield point: a blocked read always returns within
// one timeout, letting the runner observe stop conditions.
//
// Use [NewClient] and then [Client.Open] per source attempt:
//
//	client := fetch.NewClient(10*time.Second, 20*time.Second)
//	stream, err := client.Open(ctx, url)
//	if err != nil {
//		// dial failure, DNS error, or non-2xx status
//	}
//	defer stream.Close()
//	n, err := stream.Read(buf)
package fetch
