package scaling

import (
	"errors"
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/forestrie/go-scalingbloom/bitmap"
	"github.com/forestrie/go-scalingbloom/bloom"
)

const (
	ManifestVersion = 1
)

// Manifest records what is needed to reopen a file backed scaling filter:
// the growth parameters and the backing file of every layer, oldest first.
// Designed capacities and probabilities are not recorded; they follow from
// Config and position.
type Manifest struct {
	Version uint16   `cbor:"1,keyasint"`
	Config  Config   `cbor:"2,keyasint"`
	Files   []string `cbor:"3,keyasint"`
}

var (
	manifestEncMode cbor.EncMode
	manifestDecMode cbor.DecMode
)

func init() {
	var err error
	if manifestEncMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if manifestDecMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

// EncodeManifest returns the deterministic CBOR encoding of m
func EncodeManifest(m Manifest) ([]byte, error) {
	return manifestEncMode.Marshal(m)
}

func DecodeManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := manifestDecMode.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: decoding manifest: %w", ErrIOFailure, err)
	}
	if m.Version != ManifestVersion {
		return Manifest{}, fmt.Errorf("%w: %d", ErrManifestVersion, m.Version)
	}
	return m, nil
}

// Manifest describes s. Every layer must be file backed.
func (s *Filter) Manifest() (Manifest, error) {
	m := Manifest{
		Version: ManifestVersion,
		Config:  s.cfg,
	}
	for i, l := range s.layers {
		path := l.Filter.Bitmap().Path()
		if path == "" {
			return Manifest{}, fmt.Errorf("%w: layer %d", ErrAnonymousLayer, i)
		}
		m.Files = append(m.Files, path)
	}
	return m, nil
}

// WriteManifest flushes s and then writes its manifest to path. The manifest
// is only useful while the layer files stay where they are.
func (s *Filter) WriteManifest(path string) error {
	m, err := s.Manifest()
	if err != nil {
		return err
	}
	if err := s.Flush(); err != nil {
		return err
	}
	data, err := EncodeManifest(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: writing manifest %s: %w", ErrIOFailure, path, err)
	}
	s.infof("scaling: wrote manifest %s for %d layers", path, len(m.Files))
	return nil
}

func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: reading manifest %s: %w", ErrIOFailure, path, err)
	}
	return DecodeManifest(data)
}

// OpenManifest reopens the scaling filter described by the manifest at path.
// opts are applied after the manifest's Config, so they may supply a logger,
// metrics or a filename callback for layers grown from here on.
//
// Each layer file must have exactly the size, and persist exactly the k,
// that its position implies. Anything else means the file was truncated,
// replaced or corrupted and is reported as an ErrIOFailure.
func OpenManifest(path string, opts ...Option) (*Filter, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	all := append([]Option{WithConfig(m.Config)}, opts...)
	o := NewOptions(all...)
	if err := o.Config.Validate(); err != nil {
		return nil, err
	}

	var filters []*bloom.Filter
	closeAll := func() {
		for _, f := range filters {
			f.Close()
		}
	}
	for i, name := range m.Files {
		capacity, prob := o.Config.Layer(i)
		size, k := bloom.ParamsForCapacity(capacity, prob)
		f, err := openLayer(name, size, k, o)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		filters = append(filters, f)
	}

	s, err := New(append(all, WithFilters(filters...))...)
	if err != nil {
		closeAll()
		return nil, err
	}
	return s, nil
}

// openLayer maps the layer file name, which must be size bytes and persist k.
func openLayer(name string, size uint64, k uint32, o Options) (*bloom.Filter, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIOFailure, name, err)
	}
	if fi.Size() < 0 || uint64(fi.Size()) != size {
		return nil, fmt.Errorf("%w: %s has %d bytes, want %d", ErrLayerSize, name, fi.Size(), size)
	}

	var bopts []bitmap.Option
	if o.Log != nil {
		bopts = append(bopts, bitmap.WithLogger(o.Log))
	}
	bopts = append(bopts, o.BitmapOptions...)
	bopts = append(bopts, bitmap.WithFile(name))
	bm, err := bitmap.New(size, bopts...)
	if err != nil {
		return nil, err
	}

	f, err := bloom.New(bm, k, bloom.WithLogger(o.Log))
	if err != nil {
		return nil, errors.Join(err, bm.Close())
	}
	if f.K() != k {
		f.Close()
		return nil, fmt.Errorf("%w: %s has k=%d, want %d", bloom.ErrHeaderCorrupt, name, f.K(), k)
	}
	return f, nil
}
