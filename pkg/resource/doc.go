// Package resource generates REST handlers for a store.Model.
//
// A Resource is built once from a Config and mounted on a gorilla/mux router.
// Every request runs through the same ordered pipeline:
//
//	init -> initializers -> dispatch -> mutators -> redact -> respond
//
// Dispatch picks the operation for the request. On the default routes it is
// chosen by HTTP verb from the supported methods:
//
//	get     list documents matching the route id or query filter
//	post    update when the route carries an id, create otherwise
//	put     update the addressed document (patch is identical)
//	delete  remove the addressed document, or the whole collection
//
// Static routes, generated from a map of named handlers the model exposes,
// call their handler directly whatever the verb.
//
// Results accumulate in RequestContext.Collection. Redaction removes the
// model's private fields from the first accumulated batch, and the response
// body is that collection with a single element unwrapped.
//
// Usage:
//
//	users := memory.New("users")
//	users.SetStatic("privateKeys", []string{"password"})
//
//	res, err := resource.New(resource.Config{Model: users})
//	if err != nil {
//	    return err
//	}
//	router := mux.NewRouter()
//	res.Mount(router)
package resource
