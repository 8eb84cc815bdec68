package repl

import (
	"reflect"
	"testing"
)

func TestCompleter(t *testing.T) {
	c := NewCompleter("set", "get", "del")

	if !c.Known("get") || !c.Known("exit") {
		t.Error("expected get and exit to be known")
	}
	if c.Known("ge") {
		t.Error("prefix should not be known")
	}

	if got := c.Complete("h"); !reflect.DeepEqual(got, []string{"help", "history"}) {
		t.Errorf("Complete(h) = %v", got)
	}
	if got := c.Complete("z"); got != nil {
		t.Errorf("Complete(z) = %v, want nil", got)
	}
}
