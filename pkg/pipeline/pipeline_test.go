package pipeline

import (
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/ringtower/pkg/buildinfo"
	"github.com/matzehuels/ringtower/pkg/cache"
	"github.com/matzehuels/ringtower/pkg/ring"
)

func TestOptionsSetDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()

	if o.Rings.Len() != 1 {
		t.Errorf("Rings.Len() = %d, want 1", o.Rings.Len())
	}
	if o.QueueSize != DefaultQueueSize {
		t.Errorf("QueueSize = %d, want %d", o.QueueSize, DefaultQueueSize)
	}
	if o.ExportTTL != DefaultExportTTL {
		t.Errorf("ExportTTL = %v, want %v", o.ExportTTL, DefaultExportTTL)
	}
	if o.Cache == nil || o.Keyer == nil || o.Logger == nil {
		t.Error("Cache, Keyer and Logger should be set")
	}
	if o.Loader.Cache != o.Cache {
		t.Error("loader should share the studio cache")
	}
	if o.Loader.Logger != o.Logger {
		t.Error("loader should share the studio logger")
	}
	key := o.Keyer.ExportKey("abc", cache.ExportKeyOpts{})
	if !strings.HasPrefix(key, buildinfo.Version+":export:") {
		t.Errorf("export key %q should be scoped to the build", key)
	}
	if o.Loader.Keyer != nil {
		t.Error("template keys should not be scoped to the build")
	}
}

func TestOptionsSetDefaultsKeepsValues(t *testing.T) {
	set := ring.NewSet()
	set.Add()
	o := Options{Rings: set, QueueSize: 3, ExportTTL: time.Minute}
	o.SetDefaults()

	if o.Rings.Len() != 2 {
		t.Errorf("Rings.Len() = %d, want 2", o.Rings.Len())
	}
	if o.QueueSize != 3 {
		t.Errorf("QueueSize = %d, want 3", o.QueueSize)
	}
	if o.ExportTTL != time.Minute {
		t.Errorf("ExportTTL = %v, want 1m", o.ExportTTL)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"valid", Options{QueueSize: 1}, false},
		{"zero queue", Options{QueueSize: 0}, true},
		{"negative queue", Options{QueueSize: -2}, true},
		{"negative ttl", Options{QueueSize: 1, ExportTTL: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
