// Package fetch provides a data-fetching controller with request
// cancellation for JSON REST resources.
//
// A Resource is bound to one logical subscription (for example "the product
// list for the current filters"). Each time the consumer's inputs change it
// is re-pointed with Subscribe:
//
//	products := fetch.New[[]catalog.Product](httpClient)
//	defer products.Close()
//
//	products.Subscribe(fetch.Input{
//		URL:    endpoints.Products(),
//		Params: params.Params(),
//	})
//
//	for range products.Changes() {
//		st := products.State()
//		render(st.Data, st.Loading(), st.IsFetching, st.IsError)
//	}
//
// # Request identity
//
// Inputs are compared by value: the URL, the query produced by Params.Encode
// (pairs in insertion order, key=value joined by '&') and the request
// options. Re-subscribing with an identical input is a no-op. An empty URL
// disables the subscription.
//
// # Ordering
//
// Only the most recently issued request may commit. Issuing a request
// cancels the previous one through its context, which aborts the
// underlying connection; if the transport still delivers a late result it
// is dropped before touching state.
//
// # Failure model
//
// Network errors, non-2xx statuses and undecodable bodies all surface as
// IsError with no further detail. A failed first load leaves Data nil; a
// failed refetch keeps the previous Data. Cancellation is not a failure.
package fetch
