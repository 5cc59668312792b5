package store

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
)

// LoadOptions controls parallel collection loading and error handling.
type LoadOptions struct {
	// Parallel enables concurrent loading of collection files.
	Parallel bool

	// Workers is the number of loader goroutines. If 0, defaults to
	// runtime.NumCPU(). Only used when Parallel is true.
	Workers int

	// SkipErrors continues loading when individual collections fail.
	// Failed collections are left out and their errors collected.
	// When false, the first error stops loading and is returned.
	SkipErrors bool

	// Progress is called after each collection is processed with
	// (loaded, total).
	Progress func(loaded, total int)

	// ErrorLog receives one line per loading error.
	ErrorLog io.Writer
}

// DefaultLoadOptions returns load options with sensible defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Parallel:   true,
		Workers:    runtime.NumCPU(),
		SkipErrors: false,
	}
}

// Load builds a Store from the manifest.
//
// Collections with a File are read and indexed on a worker pool; inline
// collections are built in the same pool. Collection order in the store
// follows the manifest regardless of completion order. Stored regions are
// installed without going through a persister.
//
// Example:
//
//	m, err := store.ReadManifest("workspace.yaml")
//	if err != nil {
//	    return err
//	}
//	st, errs := store.Load(ctx, m, store.LoadOptions{
//	    Parallel:   true,
//	    SkipErrors: true,
//	    ErrorLog:   os.Stderr,
//	})
func Load(ctx context.Context, m *Manifest, opts LoadOptions) (*Store, []error) {
	collections, errs := loadCollections(ctx, m, opts)
	if errs != nil && !opts.SkipErrors {
		return nil, errs
	}

	st := New(collections...)
	for _, rs := range m.Regions {
		r, err := rs.Build()
		if err != nil {
			if !opts.SkipErrors {
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		st.regions[r.Name] = r
	}
	return st, errs
}

func (m *Manifest) loadOne(spec CollectionSpec) (*Collection, error) {
	if spec.File != "" {
		fileSpec, err := readCollectionFile(m.resolve(spec.File), spec.Name)
		if err != nil {
			return nil, err
		}
		spec = fileSpec
	}
	return spec.Build()
}

func loadCollections(ctx context.Context, m *Manifest, opts LoadOptions) ([]*Collection, []error) {
	specs := m.Collections
	if len(specs) == 0 {
		return nil, nil
	}

	if !opts.Parallel {
		return loadCollectionsSerial(ctx, m, opts)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(specs) {
		workers = len(specs)
	}

	type loadResult struct {
		index      int
		collection *Collection
		err        error
	}

	jobs := make(chan int, len(specs))
	results := make(chan loadResult, len(specs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				if err := ctx.Err(); err != nil {
					results <- loadResult{index: index, err: err}
					continue
				}
				c, err := m.loadOne(specs[index])
				results <- loadResult{index: index, collection: c, err: err}
			}
		}()
	}

	for i := range specs {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	loadedByIndex := make(map[int]*Collection)
	var errs []error
	loaded := 0

	for result := range results {
		loaded++
		if opts.Progress != nil {
			opts.Progress(loaded, len(specs))
		}

		if result.err != nil {
			err := fmt.Errorf("collection %s: %w", specName(specs[result.index]), result.err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "Error loading collection: %v\n", err)
			}
			errs = append(errs, err)
			continue
		}
		loadedByIndex[result.index] = result.collection
	}

	if len(errs) > 0 && !opts.SkipErrors {
		return nil, errs[:1]
	}

	collections := make([]*Collection, 0, len(loadedByIndex))
	for i := range specs {
		if c, ok := loadedByIndex[i]; ok {
			collections = append(collections, c)
		}
	}
	return collections, errs
}

// loadCollectionsSerial loads collections one at a time (Parallel=false).
func loadCollectionsSerial(ctx context.Context, m *Manifest, opts LoadOptions) ([]*Collection, []error) {
	specs := m.Collections
	collections := make([]*Collection, 0, len(specs))
	var errs []error

	for i, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, []error{err}
		}

		c, err := m.loadOne(spec)
		if opts.Progress != nil {
			opts.Progress(i+1, len(specs))
		}
		if err != nil {
			err := fmt.Errorf("collection %s: %w", specName(spec), err)
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "Error loading collection: %v\n", err)
			}
			if !opts.SkipErrors {
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		collections = append(collections, c)
	}
	return collections, errs
}

func specName(spec CollectionSpec) string {
	if spec.Name != "" {
		return spec.Name
	}
	return spec.File
}
