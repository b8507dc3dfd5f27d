// Package dataset stores encoded records in a bbolt database, one bucket per
// layout fingerprint.
package dataset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/born-ml/structtensor/internal/envelope"
	"github.com/born-ml/structtensor/internal/layout"
	"github.com/born-ml/structtensor/internal/tensor"
)

var (
	// ErrNotFound means no rows were ever stored for a layout.
	ErrNotFound = errors.New("dataset: layout not found")
	// ErrDTypeMismatch means rows of a layout were stored with another element type.
	ErrDTypeMismatch = errors.New("dataset: element type differs from stored rows")
)

var (
	manifestKey = []byte("manifest")
	rowsBucket  = []byte("rows")
)

// Manifest describes the layout a bucket's rows were encoded with.
type Manifest struct {
	Fingerprint uint64        `msgpack:"fp"`
	Len         int           `msgpack:"len"`
	DType       string        `msgpack:"dtype"`
	Slots       []layout.Slot `msgpack:"slots"`
	Created     time.Time     `msgpack:"created"`
}

// Options configures Open.
type Options struct {
	Timeout   time.Duration // wait for the file lock; zero waits forever
	IsTesting bool          // skip fsync
	Logger    *zap.Logger
}

// Store is an append-only row store.
type Store struct {
	bdb    *bbolt.DB
	logger *zap.Logger
}

// Open opens or creates the database at path.
func Open(path string, opt Options) (*Store, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = opt.Timeout
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
	} else {
		bopt.FreelistType = bbolt.FreelistMapType
	}

	bdb, err := bbolt.Open(path, 0o666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	logger := opt.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{bdb: bdb, logger: logger}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.bdb.Close()
}

// BucketName is the bucket holding rows of the layout with fingerprint fp.
func BucketName(fp uint64) string {
	return fmt.Sprintf("%016x", fp)
}

// Append stores every row of the (rows, m.Len) tensor x under m's layout and
// returns the number of rows stored. The first append of a layout records m.
func (s *Store) Append(m Manifest, x *tensor.RawTensor) (int, error) {
	shape := x.Shape()
	if len(shape) != 2 || shape[1] != m.Len {
		return 0, fmt.Errorf("%w: layout needs (rows, %d), tensor is %v", layout.ErrShapeMismatch, m.Len, shape)
	}
	if x.DType().String() != m.DType {
		return 0, fmt.Errorf("%w: manifest %s, tensor %s", ErrDTypeMismatch, m.DType, x.DType())
	}

	rows := make([][]byte, shape[0])
	for i := range rows {
		row, err := x.Row(i)
		if err != nil {
			return 0, err
		}
		if rows[i], err = envelope.Marshal(row, m.Fingerprint); err != nil {
			return 0, err
		}
	}

	err := s.bdb.Update(func(btx *bbolt.Tx) error {
		root, err := btx.CreateBucketIfNotExists([]byte(BucketName(m.Fingerprint)))
		if err != nil {
			return err
		}
		if raw := root.Get(manifestKey); raw != nil {
			var stored Manifest
			if err := msgpack.Unmarshal(raw, &stored); err != nil {
				return fmt.Errorf("%w: manifest: %w", envelope.ErrCorrupt, err)
			}
			if stored.DType != m.DType {
				return fmt.Errorf("%w: stored %s, appending %s", ErrDTypeMismatch, stored.DType, m.DType)
			}
		} else {
			m.Created = time.Now().UTC()
			raw, err := msgpack.Marshal(&m)
			if err != nil {
				return err
			}
			if err := root.Put(manifestKey, raw); err != nil {
				return err
			}
		}

		data, err := root.CreateBucketIfNotExists(rowsBucket)
		if err != nil {
			return err
		}
		for _, row := range rows {
			seq, err := data.NextSequence()
			if err != nil {
				return err
			}
			if err := data.Put(seqKey(seq), row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("dataset: append: %w", err)
	}
	s.logger.Debug("dataset rows appended",
		zap.String("bucket", BucketName(m.Fingerprint)),
		zap.Int("rows", len(rows)))
	return len(rows), nil
}

// Load returns every row stored for the layout fp, in append order, as a
// (rows, len) tensor allocated by b.
func (s *Store) Load(fp uint64, b tensor.Backend) (*tensor.RawTensor, error) {
	var x *tensor.RawTensor
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		root := btx.Bucket([]byte(BucketName(fp)))
		if root == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, BucketName(fp))
		}
		m, err := readManifest(root)
		if err != nil {
			return err
		}
		dtype, err := tensor.ParseDataType(m.DType)
		if err != nil {
			return fmt.Errorf("%w: manifest: %w", envelope.ErrCorrupt, err)
		}
		data := root.Bucket(rowsBucket)
		n := 0
		if data != nil {
			n = data.Stats().KeyN
		}
		if x, err = b.Zeros(tensor.Shape{n, m.Len}, dtype); err != nil {
			return err
		}
		if data == nil {
			return nil
		}

		i := 0
		return data.ForEach(func(k, v []byte) error {
			if i >= n {
				return fmt.Errorf("%w: more rows than counted", envelope.ErrCorrupt)
			}
			row, err := envelope.Unmarshal(v, fp)
			if err != nil {
				return fmt.Errorf("row %d: %w", binary.BigEndian.Uint64(k), err)
			}
			dst, err := x.Row(i)
			if err != nil {
				return err
			}
			if !row.Shape().Equal(tensor.Shape{m.Len}) || row.DType() != dtype {
				return fmt.Errorf("%w: row %d is %v", envelope.ErrCorrupt, binary.BigEndian.Uint64(k), row)
			}
			copy(dst.Data(), row.Data())
			i++
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("dataset: load: %w", err)
	}
	return x, nil
}

// BucketStats summarizes one layout's rows.
type BucketStats struct {
	Bucket   string
	Rows     int
	Manifest Manifest
}

// Stats lists every layout in the store, ordered by bucket name.
func (s *Store) Stats() ([]BucketStats, error) {
	var out []BucketStats
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		return btx.ForEach(func(name []byte, root *bbolt.Bucket) error {
			m, err := readManifest(root)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			st := BucketStats{Bucket: string(name), Manifest: m}
			if data := root.Bucket(rowsBucket); data != nil {
				st.Rows = data.Stats().KeyN
			}
			out = append(out, st)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("dataset: stats: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out, nil
}

func readManifest(root *bbolt.Bucket) (Manifest, error) {
	var m Manifest
	raw := root.Get(manifestKey)
	if raw == nil {
		return m, fmt.Errorf("%w: missing manifest", envelope.ErrCorrupt)
	}
	if err := msgpack.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("%w: manifest: %w", envelope.ErrCorrupt, err)
	}
	return m, nil
}

func seqKey(seq uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], seq)
	return k[:]
}
