package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/vancyferns/near2door/pkg/router"
	"github.com/vancyferns/near2door/pkg/store"
)

const limiterSweepInterval = 5 * time.Minute

// PrintRoutes writes the route table of r to w.
func PrintRoutes(w io.Writer, r *router.Router) error {
	infos := r.Routes()
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "No routes registered.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tNAME")
	fmt.Fprintln(tw, "------\t----\t----")
	for _, ri := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return tw.Flush()
}

// EnsureIndexes creates the declared indexes when the store supports them.
func (a *Application) EnsureIndexes(ctx context.Context) error {
	m, ok := a.Store.(*store.Mongo)
	if !ok {
		return nil
	}
	return m.EnsureIndexes(ctx)
}
