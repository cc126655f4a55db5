package docs

import (
	"strings"
	"testing"
)

func TestTopicsAreSortedAndReadable(t *testing.T) {
	topics := Topics()
	if len(topics) == 0 {
		t.Fatalf("expected embedded topics")
	}
	for i, name := range topics {
		if i > 0 && topics[i-1] > name {
			t.Fatalf("topics not sorted: %v", topics)
		}
		md, ok := Get(name)
		if !ok || strings.TrimSpace(md) == "" {
			t.Fatalf("topic %q is empty", name)
		}
	}
}

func TestGet(t *testing.T) {
	if _, ok := Get(" Keys "); !ok {
		t.Fatalf("expected case-insensitive lookup")
	}
	for _, bad := range []string{"", "nope", "../docs", `content\keys`} {
		if _, ok := Get(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestIndexTitles(t *testing.T) {
	for _, topic := range Index() {
		if topic.Title == "" || strings.HasPrefix(topic.Title, "#") {
			t.Fatalf("bad title for %s: %q", topic.Name, topic.Title)
		}
	}
}
