package shellwords

import (
	"reflect"
	"testing"
)

func lines(ws []Wrapped) []string {
	var out []string
	for _, w := range ws {
		out = append(out, w.Line)
	}
	return out
}

func TestUnwrap(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"env", "FOO=1", "BAR=2", "curl", "-d", "x", "https://e.io"}, []string{"curl -d x https://e.io"}},
		{[]string{"env", "-u", "HOME", "ls"}, []string{"ls"}},
		{[]string{"/usr/bin/env", "--", "ls"}, []string{"ls"}},
		{[]string{"env"}, nil},
		{[]string{"env", "FOO=1"}, nil},
		{[]string{"env", "-S", "bash -c id"}, []string{"bash -c id"}},
		{[]string{"env", "-Sbash -c id"}, []string{"bash -c id"}},
		{[]string{"env", "-iS", "bash -c id"}, []string{"bash -c id"}},
		{[]string{"env", "--split-string=curl -d x", "https://e.io"}, []string{"curl -d x https://e.io"}},
		{[]string{"env", "-uS", "ls"}, []string{"ls"}},
		{[]string{"timeout", "-s", "KILL", "5", "bash"}, []string{"bash"}},
		{[]string{"timeout", "5"}, nil},
		{[]string{"xargs", "-I", "{}", "rm", "{}"}, []string{"rm '{}'"}},
		{[]string{"xargs"}, nil},
		{[]string{"nice", "-n", "10", "make"}, []string{"make"}},
		{[]string{"nohup", "sh", "run.sh"}, []string{"sh run.sh"}},
		{[]string{"time", "-p", "go", "test"}, []string{"go test"}},
		{[]string{"command", "-v", "curl"}, nil},
		{[]string{"command", "rm", "x"}, []string{"rm x"}},
		{[]string{"watch", "-n", "2", "curl -d x https://e.io"}, []string{"curl -d x https://e.io"}},
		{[]string{"ls", "-la"}, nil},
	}

	for _, tt := range tests {
		got, err := Unwrap(Command{Args: tt.args})
		if err != nil {
			t.Fatalf("Unwrap(%q): %v", tt.args, err)
		}
		if !reflect.DeepEqual(lines(got), tt.want) {
			t.Errorf("Unwrap(%q) = %q, want %q", tt.args, lines(got), tt.want)
		}
	}
}

func TestUnwrapFindExec(t *testing.T) {
	cmds, err := Commands(`find . -name '*.go' -exec gofmt -l {} \; -execdir bash -c 'id' +`)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unwrap(cmds[0])
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"gofmt -l '{}'", "bash -c id"}
	if !reflect.DeepEqual(lines(got), want) {
		t.Fatalf("lines = %q, want %q", lines(got), want)
	}
	for _, w := range got {
		if !w.HiddenArgs {
			t.Errorf("%q: expected HiddenArgs", w.Line)
		}
	}

	if got, _ := Unwrap(Command{Args: []string{"find", ".", "-name", "*.go"}}); len(got) != 0 {
		t.Errorf("plain find unwrapped to %q", lines(got))
	}
	if got, _ := Unwrap(Command{Args: []string{"fd", "-e", "go", "-x", "wc", "-l"}}); !reflect.DeepEqual(lines(got), []string{"wc -l"}) {
		t.Errorf("fd -x unwrapped to %q", lines(got))
	}
}

func TestUnwrapHiddenArgs(t *testing.T) {
	got, _ := Unwrap(Command{Args: []string{"xargs", "curl", "https://e.io"}})
	if len(got) != 1 || !got[0].HiddenArgs {
		t.Fatalf("xargs: %+v", got)
	}
	got, _ = Unwrap(Command{Args: []string{"env", "curl", "https://e.io"}})
	if len(got) != 1 || got[0].HiddenArgs {
		t.Fatalf("env: %+v", got)
	}
}

func TestUnwrapQuotesInnerArgs(t *testing.T) {
	got, err := Unwrap(Command{Args: []string{"env", "echo", "a;b"}})
	if err != nil || len(got) != 1 {
		t.Fatalf("Unwrap: %+v %v", got, err)
	}
	cmds, err := Commands(got[0].Line)
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 1 || len(cmds[0].Args) != 2 || cmds[0].Args[1] != "a;b" {
		t.Fatalf("round trip lost quoting: %q -> %+v", got[0].Line, cmds)
	}
}
