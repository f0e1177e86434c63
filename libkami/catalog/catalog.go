// Package catalog persists puzzle isomorphism classes in a badger db.
//
// Catalog database format:
//
//	gCatalogStateKey => catalogState (version + class counts per node count)
//
//	'p', QuickHash, '/', index varint  => SolvablePuzzle encoding
//	    (entry UserMeta holds the best known solution length)
//
// Entries under one QuickHash prefix form the hash bucket: adding a
// puzzle scans its bucket and runs the authoritative isomorphism check
// against each stored entry, so the catalog deduplicates exactly like
// an in-memory HashTracker, but across process runs.
package catalog

import (
	"encoding/binary"
	"runtime"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/kami-systems/gokami/gokami"
	"github.com/kami-systems/gokami/libkami"
)

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const (
	kPuzzleEntry = byte('p')
	kBucketSep   = byte('/')

	kMajorVers = 2026
	kMinorVers = 1

	// UserMeta value for entries with no known solution
	kMovesUnknown = byte(0xFF)
)

type catalogState struct {
	MajorVers  int64
	MinorVers  int64
	NumPuzzles []uint64 // isomorphism classes stored, indexed by node count
}

// catalog is a db wrapper for a kami puzzle catalog
type catalog struct {
	ctx      gokami.CatalogContext
	readOnly bool
	db       *badger.DB

	// mu serializes adds and guards the state record: concurrent
	// TryAddPuzzle calls must never scan one bucket with the same
	// nextIndex (conflict detection is off).
	mu         sync.Mutex
	stateDirty bool
	state      catalogState
}

// OpenCatalog opens a new or existing puzzle catalog and attaches it to
// the given context. An empty DbPathName opens an in-memory catalog.
func OpenCatalog(ctx gokami.CatalogContext, opts gokami.CatalogOpts) (gokami.Catalog, error) {
	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // single writer, so skip for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(gokami.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	// Once the db is open, the catalog stays attached until it closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state.MajorVers = kMajorVers
		cat.state.MinorVers = kMinorVers
	}
	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Wrap(gokami.ErrBadCatalogParam, "catalog version is incompatible")
	}
	if err != nil {
		cat.db.Close()
		ctx.DetachCatalog(cat)
		return nil, err
	}
	klog.V(1).Infof("opened catalog %q", opts.DbPathName)
	return cat, nil
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cat.state.unmarshal(val)
		})
	})
}

func (cat *catalog) flushState(txn *badger.Txn) error {
	if !cat.stateDirty || cat.readOnly {
		return nil
	}
	err := txn.Set(gCatalogStateKey, cat.state.marshal(nil))
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

func (st *catalogState) marshal(in []byte) []byte {
	var scrap [binary.MaxVarintLen64]byte
	out := in
	for _, v := range []uint64{uint64(st.MajorVers), uint64(st.MinorVers), uint64(len(st.NumPuzzles))} {
		n := binary.PutUvarint(scrap[:], v)
		out = append(out, scrap[:n]...)
	}
	for _, count := range st.NumPuzzles {
		n := binary.PutUvarint(scrap[:], count)
		out = append(out, scrap[:n]...)
	}
	return out
}

func (st *catalogState) unmarshal(enc []byte) error {
	fields := make([]uint64, 0, 3)
	for i := 0; i < 3; i++ {
		v, n := binary.Uvarint(enc)
		if n <= 0 {
			return gokami.ErrBadEncoding
		}
		enc = enc[n:]
		fields = append(fields, v)
	}
	st.MajorVers = int64(fields[0])
	st.MinorVers = int64(fields[1])
	st.NumPuzzles = make([]uint64, fields[2])
	for i := range st.NumPuzzles {
		v, n := binary.Uvarint(enc)
		if n <= 0 {
			return gokami.ErrBadEncoding
		}
		enc = enc[n:]
		st.NumPuzzles[i] = v
	}
	return nil
}

// bucketPrefix forms the key prefix shared by every entry with the
// given quick hash.
func bucketPrefix(in []byte, quick gokami.QuickHash) []byte {
	out := append(in, kPuzzleEntry)
	out = append(out, quick...)
	out = append(out, kBucketSep)
	return out
}

func metaForMoveCount(moveCount int) byte {
	if moveCount == gokami.MoveCountUnknown || moveCount > 0xFE {
		return kMovesUnknown
	}
	return byte(moveCount)
}

func moveCountForMeta(meta byte) int {
	if meta == kMovesUnknown {
		return gokami.MoveCountUnknown
	}
	return int(meta)
}

// TryAddPuzzle adds the given puzzle state if no isomorphic state is
// already stored. If true is returned, X was not present and was added.
func (cat *catalog) TryAddPuzzle(X gokami.State, moveCount int) bool {
	if cat.readOnly {
		return false
	}

	var keyBuf [128]byte
	prefix := bucketPrefix(keyBuf[:0], X.QuickIdentity())

	enc, err := X.MarshalOut(nil)
	if err != nil {
		return false
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()

	txn := cat.db.NewTransaction(true)
	defer txn.Discard()

	// Scan the bucket for an isomorphic entry.
	itOpts := badger.DefaultIteratorOptions
	itOpts.Prefix = prefix
	it := txn.NewIterator(itOpts)
	nextIndex := uint64(0)
	found := false
	for it.Rewind(); it.Valid(); it.Next() {
		nextIndex++
		err = it.Item().Value(func(val []byte) error {
			stored, err := libkami.NewSolvableFromEncoding(val, nil)
			if err != nil {
				return err
			}
			if stored.Isomorphic(X) {
				found = true
			}
			return nil
		})
		if err != nil || found {
			break
		}
	}
	it.Close()
	if err != nil || found {
		return false
	}

	var scrap [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scrap[:], nextIndex)
	key := append(prefix, scrap[:n]...)

	entry := badger.NewEntry(key, enc).WithMeta(metaForMoveCount(moveCount))
	if txn.SetEntry(entry) != nil {
		return false
	}

	nodeCount := X.NodeCount()
	for len(cat.state.NumPuzzles) <= nodeCount {
		cat.state.NumPuzzles = append(cat.state.NumPuzzles, 0)
	}
	cat.state.NumPuzzles[nodeCount]++
	cat.stateDirty = true

	if cat.flushState(txn) != nil {
		return false
	}
	return txn.Commit() == nil
}

func (cat *catalog) NumPuzzles(forNodeCount int) int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if forNodeCount < 0 || forNodeCount >= len(cat.state.NumPuzzles) {
		return 0
	}
	return int64(cat.state.NumPuzzles[forNodeCount])
}

// Select fires onHit with each stored puzzle admitted by sel.
// Decoded puzzles get private HashTrackers.
func (cat *catalog) Select(sel gokami.Selector, onHit gokami.OnPuzzleHit) {
	cat.db.View(func(txn *badger.Txn) error {
		itOpts := badger.DefaultIteratorOptions
		itOpts.Prefix = []byte{kPuzzleEntry}
		it := txn.NewIterator(itOpts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			moveCount := moveCountForMeta(item.UserMeta())
			err := item.Value(func(val []byte) error {
				stored, err := libkami.NewSolvableFromEncoding(val, nil)
				if err != nil {
					return err
				}
				if sel.Admits(stored.NodeCount(), moveCount) {
					onHit <- stored
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (cat *catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db == nil {
		return nil
	}
	if cat.stateDirty && !cat.readOnly {
		txn := cat.db.NewTransaction(true)
		if cat.flushState(txn) == nil {
			txn.Commit()
		} else {
			txn.Discard()
		}
	}
	err := cat.db.Close()
	cat.db = nil
	cat.ctx.DetachCatalog(cat)
	return err
}
