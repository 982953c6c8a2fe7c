package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/bindkit/gpucore"
)

// stubDevice is a Device that records Close calls.
type stubDevice struct {
	gpucore.Context
	name   string
	closed bool
}

func (d *stubDevice) Name() string { return d.name }
func (d *stubDevice) Close()       { d.closed = true }

// withRegistry swaps the registry contents for the duration of a test.
func withRegistry(t *testing.T, factories map[string]Factory) {
	t.Helper()
	registryMu.Lock()
	saved := backends
	backends = factories
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		backends = saved
		registryMu.Unlock()
	})
}

func TestRegisterAndOpen(t *testing.T) {
	withRegistry(t, map[string]Factory{})

	Register("stub", func() (Device, error) { return &stubDevice{name: "stub"}, nil })
	if !IsRegistered("stub") {
		t.Fatal("stub should be registered")
	}
	dev, err := Open("stub")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if dev.Name() != "stub" {
		t.Errorf("Name() = %q", dev.Name())
	}

	Unregister("stub")
	if IsRegistered("stub") {
		t.Error("stub should be unregistered")
	}
	if _, err := Open("stub"); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open after Unregister err = %v, want ErrUnknownBackend", err)
	}
}

func TestAvailableSorted(t *testing.T) {
	withRegistry(t, map[string]Factory{})

	for _, name := range []string{"zeta", "alpha", "mid"} {
		Register(name, func() (Device, error) { return &stubDevice{name: name}, nil })
	}
	got := Available()
	want := []string{"alpha", "mid", "zeta"}
	if !slices.Equal(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
}

func TestOpenDefaultPriority(t *testing.T) {
	tests := []struct {
		name      string
		factories map[string]Factory
		want      string
		wantErr   error
	}{
		{
			name: "native preferred",
			factories: map[string]Factory{
				NameNative:   func() (Device, error) { return &stubDevice{name: NameNative}, nil },
				NameSoftware: func() (Device, error) { return &stubDevice{name: NameSoftware}, nil },
			},
			want: NameNative,
		},
		{
			name: "falls back when native fails",
			factories: map[string]Factory{
				NameNative:   func() (Device, error) { return nil, errors.New("no adapter") },
				NameSoftware: func() (Device, error) { return &stubDevice{name: NameSoftware}, nil },
			},
			want: NameSoftware,
		},
		{
			name:      "nothing registered",
			factories: map[string]Factory{},
			wantErr:   ErrBackendNotAvailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withRegistry(t, tt.factories)
			dev, err := OpenDefault()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenDefault failed: %v", err)
			}
			if dev.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", dev.Name(), tt.want)
			}
		})
	}
}
