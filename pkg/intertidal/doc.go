// Package intertidal drives a tide-driven zonation and selection session.
//
// A Session classifies an elevation surface into submerged and exposed
// zones for a tide height, and narrows a selection over feature collections
// either through a collection, field and value cascade or by intersecting
// the collection with one of the derived zones.
//
// # Basic Usage
//
//	st := store.New(knownTracks, userTracks)
//	sess, err := intertidal.NewSession(st, st, source, intertidal.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//
//	if err := sess.SetTideHeightText("0.5"); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := sess.RecomputeZones(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Cascading Selection
//
// Each step narrows the next. Choosing a collection invalidates the field
// list and candidate values; choosing a field recomputes the candidate
// values; choosing a value selects the matching features:
//
//	sess.ChooseCollection("user_tracks")
//	sess.ChooseField("type")
//	fmt.Println(sess.CandidateValues()) // [footpath vehicle]
//	n, _ := sess.ChooseValue("footpath")
//
// A zone filter replaces the selection with the features intersecting a
// zone produced earlier in the same session:
//
//	n, err := sess.ApplyRegionFilter(ctx, intertidal.SubmergedExtent)
//	if errors.Is(err, intertidal.ErrRegionNotReady) {
//	    // run RecomputeZones first
//	}
//
// # Errors
//
// Every operation reports failures by wrapping one of the package's
// sentinel errors, so callers test with errors.Is. A failed operation leaves
// the session exactly as it was.
//
// # Concurrency
//
// A Session is not safe for concurrent use. OpenHelp is the only operation
// that continues in the background after returning.
package intertidal
