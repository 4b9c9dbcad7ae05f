// Package bullhorn provides types, interfaces, and helpers for working with the
// Bullhorn staffing REST API.
//
// # Overview
//
// The bullhorn package defines the domain types (JobOrder, Candidate,
// JobSubmission, FileAttachment) and the interfaces for entity clients
// (JobOrdersClient, CandidatesClient, ...). A concrete implementation is
// provided by the bhclient package, which wires configuration, transport,
// authentication and caching. Most consumers should import bhclient to
// construct a client and then use the interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/bullhorn-client/pkg/bhclient"
//	  "github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := bhclient.New(ctx, &bullhorn.Config{
//	    Username: "api.user", Password: "secret",
//	    ClientID: "client-id", ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  jobs, err := cli.JobOrders().ListOpen(ctx, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = jobs
//	}
//
// # Sessions
//
// Every entity call first obtains a session. The session is cached in memory
// and reused until it is eight minutes old; after that the next call logs in
// again. Concurrent calls that find the session missing or stale share a
// single login.
//
// # Errors
//
// Failures are reported as TransportError (network), AuthError (authorize or
// token hop), LoginError (platform login) or DomainError (entity call).
// Helpers such as IsAuthError, IsLoginError and IsNotFound branch on them.
//
// # Interceptors and caching
//
// Entity requests run through an optional InterceptorChain (logging, headers,
// metrics). Candidate lookups by email are remembered in a pluggable Cache
// backed by memory or a NATS KV bucket.
package bullhorn
