package collectors

import (
	"errors"
	"reflect"
	"testing"
)

func testDeps() Deps {
	return Deps{
		Jobs:     &fakeJobs{},
		Store:    newMemStore(),
		Accounts: fakeResolver{},
	}
}

func TestRegistryGetCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register("twitter", NewTwitter(testDeps(), "actor-1"))

	for _, key := range []string{"twitter", "Twitter", "TWITTER", " twitter "} {
		c, err := r.Get(key)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", key, err)
		}
		if c.Platform() != "twitter" {
			t.Fatalf("Get(%q) returned platform %q", key, c.Platform())
		}
	}
}

func TestRegistryUnsupportedPlatform(t *testing.T) {
	r := DefaultRegistry(testDeps(), ActorIDs{})

	_, err := r.Get("linkedin")
	var unsupported *UnsupportedPlatformError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedPlatformError, got %v", err)
	}
	want := []string{"facebook", "instagram", "tiktok", "twitter"}
	if !reflect.DeepEqual(unsupported.Supported, want) {
		t.Fatalf("expected supported list %v, got %v", want, unsupported.Supported)
	}
}

func TestDefaultRegistryPlatforms(t *testing.T) {
	r := DefaultRegistry(testDeps(), ActorIDs{})

	want := []string{"facebook", "instagram", "tiktok", "twitter"}
	if got := r.ListSupported(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if !r.IsSupported("TikTok") {
		t.Fatal("expected tiktok to be supported")
	}
	if r.IsSupported("threads") {
		t.Fatal("did not expect threads to be supported")
	}
}
