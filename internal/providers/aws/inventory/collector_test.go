package inventory

import (
	"testing"

	"github.com/pankaj-dahiya-devops/cloud-inventory/internal/models"
)

func TestDefaultRegistryCoversAllServices(t *testing.T) {
	r := DefaultRegistry()
	for _, svc := range models.AllServices {
		c, ok := r.Get(svc)
		if !ok {
			t.Errorf("no collector registered for %q", svc)
			continue
		}
		if c.Service() != svc {
			t.Errorf("collector registered under %q reports service %q", svc, c.Service())
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	r := DefaultRegistry()
	wantGlobal := map[models.Service]bool{
		models.ServiceIAM: true,
		models.ServiceS3:  true,
	}
	for _, svc := range models.AllServices {
		c, _ := r.Get(svc)
		if got, want := c.Global(), wantGlobal[svc]; got != want {
			t.Errorf("%s: Global() = %v, want %v", svc, got, want)
		}
	}
}
