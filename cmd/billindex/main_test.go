package main

import "testing"

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"run", "reindex", "enqueue"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("command %s not registered: %v", name, err)
		}
	}
	run, _, _ := root.Find([]string{"run"})
	for _, flag := range []string{"limit", "bill-id", "rearchive-session", "session", "debug", "isolate-documents"} {
		if run.Flags().Lookup(flag) == nil {
			t.Errorf("run is missing --%s", flag)
		}
	}
}
