// Package gmail provides a read-only client for fetching confirmation
// emails through the Gmail API.
//
// The client wraps the generated Gmail Users service. It lists message
// identifiers matching a search query with transparent pagination and
// fetches individual messages in full format so their headers are
// available.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := gmail.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ids, err := client.ListMessageIDs(`subject:"Registration Confirmation:"`, 6)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, id := range ids {
//	    msg, err := client.GetMessage(id)
//	    if err != nil {
//	        continue
//	    }
//	    fmt.Println(gmail.Subject(msg))
//	}
package gmail
