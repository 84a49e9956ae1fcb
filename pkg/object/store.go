package object

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
)

// Store is a content-addressed object store. It frames payloads as
// "type len\0content", hashes the frame, compresses it and hands the result
// to a Backend.
type Store struct {
	backend Backend
	codec   Codec
	cache   *ristretto.Cache[string, cachedObject]
}

type cachedObject struct {
	objType ObjectType
	data    []byte
}

// StoreOptions configures a Store.
type StoreOptions struct {
	Codec Codec
	// CacheSize is the number of decoded objects kept in memory. Zero
	// disables the cache.
	CacheSize int64
}

// NewStore creates a Store over loose objects rooted at the given directory,
// zlib-compressed and uncached.
func NewStore(root string) *Store {
	return &Store{backend: NewLooseBackend(root), codec: CodecZlib}
}

// NewStoreWithBackend creates a Store over an arbitrary backend.
func NewStoreWithBackend(b Backend, opts StoreOptions) (*Store, error) {
	codec, err := ParseCodec(string(opts.Codec))
	if err != nil {
		return nil, err
	}
	s := &Store{backend: b, codec: codec}
	if opts.CacheSize > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[string, cachedObject]{
			NumCounters: opts.CacheSize * 10,
			MaxCost:     opts.CacheSize,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("object cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Close releases the backend and cache.
func (s *Store) Close() error {
	if s.cache != nil {
		s.cache.Close()
	}
	return s.backend.Close()
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if ValidateHash(h) != nil {
		return false
	}
	ok, err := s.backend.Has(h)
	return err == nil && ok
}

// Write stores an object and returns its content hash. Writing an object
// that is already present is a no-op.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	if !objType.Valid() {
		return "", fmt.Errorf("object write: unknown type %q", objType)
	}
	h := HashObject(objType, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	compressed, err := s.codec.compress(Envelope(objType, data))
	if err != nil {
		return "", &Error{Op: "write", Hash: h, Err: fmt.Errorf("compress: %w", err)}
	}
	if err := s.backend.Put(h, compressed); err != nil {
		return "", &Error{Op: "write", Hash: h, Err: err}
	}
	return h, nil
}

// Read retrieves an object by hash, returning its type and raw content.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	if err := ValidateHash(h); err != nil {
		return "", nil, &Error{Op: "read", Hash: h, Err: err}
	}
	if s.cache != nil {
		if obj, ok := s.cache.Get(string(h)); ok {
			return obj.objType, append([]byte(nil), obj.data...), nil
		}
	}

	compressed, err := s.backend.Get(h)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return "", nil, &Error{Op: "read", Hash: h, Err: ErrObjectNotFound}
		}
		return "", nil, &Error{Op: "read", Hash: h, Err: err}
	}

	raw, err := decompress(compressed)
	if err != nil {
		return "", nil, corrupt("read", h, "decompress: %v", err)
	}

	// Parse envelope: "type len\0content"
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, corrupt("read", h, "invalid format (no NUL)")
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	typ, lenStr, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, corrupt("read", h, "invalid header %q", header)
	}
	objType := ObjectType(typ)
	if !objType.Valid() {
		return "", nil, corrupt("read", h, "unknown type %q", typ)
	}
	length, err := strconv.Atoi(lenStr)
	if err != nil || length < 0 {
		return "", nil, corrupt("read", h, "invalid length %q", lenStr)
	}
	if len(content) != length {
		return "", nil, corrupt("read", h, "length mismatch (header=%d, actual=%d)", length, len(content))
	}
	if got := HashObject(objType, content); got != h {
		return "", nil, corrupt("read", h, "content hashes to %s", got)
	}

	if s.cache != nil {
		s.cache.Set(string(h), cachedObject{objType: objType, data: append([]byte(nil), content...)}, 1)
	}
	return objType, content, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

func (s *Store) readTyped(h Hash, want ObjectType) ([]byte, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != want {
		return nil, &Error{
			Op:   "read",
			Hash: h,
			Err:  fmt.Errorf("%w: got %q, want %q", ErrTypeMismatch, objType, want),
		}
	}
	return data, nil
}

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	data, err := s.readTyped(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	data, err := MarshalTree(tr)
	if err != nil {
		return "", err
	}
	return s.Write(TypeTree, data)
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	data, err := s.readTyped(h, TypeTree)
	if err != nil {
		return nil, err
	}
	tr, err := UnmarshalTree(data)
	if err != nil {
		return nil, corrupt("read", h, "%v", err)
	}
	return tr, nil
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	data, err := s.readTyped(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, corrupt("read", h, "%v", err)
	}
	return c, nil
}
