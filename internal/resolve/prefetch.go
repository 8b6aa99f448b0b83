package resolve

import "golang.org/x/sync/errgroup"

// prefetch warms the source registry's file cache for every resolved
// import path concurrently, so the sequential, cycle-stack-ordered
// recursion in load never blocks on disk I/O one file at a time.
// Files are only read here, not parsed, and read errors are swallowed;
// load's own ast.Load call reads the file again (or hits the cache) and
// reports any error.
func (r *resolver) prefetch(paths []string) {
	var g errgroup.Group
	for _, p := range paths {
		p := p
		g.Go(func() error {
			_, _ = r.reg.Load(p)
			return nil
		})
	}
	_ = g.Wait()
}
