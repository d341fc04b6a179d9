// Package config loads the file configuration of a restkit server.
//
// A configuration has three sections: the server listener, the document
// store, and the list of resources to mount. JSON and YAML are both accepted;
// the format follows the file extension.
//
//	server:
//	  port: 3000
//	  logLevel: info
//	  metrics: true
//	store:
//	  driver: memory
//	resources:
//	  - name: users
//	    privateFields: [password]
//	    computed:
//	      displayName: "first + ' ' + last"
//	    statics:
//	      admins:
//	        filter: {role: admin}
//	        sort: name
//	    seed:
//	      - {_id: "1", first: Ada, last: Lovelace, role: admin, password: x}
//
// LoadFromFile checks the document against the embedded JSON Schema
// (SchemaJSON), applies defaults and validates before returning; every
// invalid field is reported as a *ValidationError joined into one error.
package config
