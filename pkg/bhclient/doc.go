// Package bhclient builds a bullhorn.Client from a bullhorn.Config.
//
// Quick start
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
//
//	  cli, err := bhclient.New(&bullhorn.Config{
//	    Username:     "api.user",
//	    Password:     "secret",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  jobs, err := cli.JobOrders().ListOpen(ctx, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = jobs
//	}
//
// # Endpoints
//
// AuthEndpoint, APIRoot and Version default to the public Bullhorn endpoints
// and REST version 2.0. Endpoints without a scheme get https://, and a
// trailing slash is added when missing.
//
// # Helpers
//
// Connect builds the client and logs in immediately. NewWithCredentials uses
// the default endpoints.
package bhclient
