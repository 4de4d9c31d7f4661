// Command near2door runs and administers the Near2Door marketplace backend.
//
//	near2door serve            # start the HTTP server
//	near2door serve --memory   # start against the in-process store
//	near2door route:list       # list API routes
//	near2door seed             # create demo accounts, shop and order
//	near2door reconcile        # repair half-finished approvals once
//	near2door db:indexes       # create MongoDB indexes
//
// Configuration comes from config/app.json, .env and the environment.
package main
