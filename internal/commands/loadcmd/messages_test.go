package loadcmd

import "testing"

func TestImportCommandValidate(t *testing.T) {
	cases := []struct {
		name    string
		cmd     ImportCommand
		wantErr bool
	}{
		{"valid", ImportCommand{Kind: "pages", Source: "pages.csv"}, false},
		{"valid skip mode", ImportCommand{Kind: "articles", Source: "a.json", Mode: "skip"}, false},
		{"missing kind", ImportCommand{Source: "pages.csv"}, true},
		{"unknown kind", ImportCommand{Kind: "menus", Source: "pages.csv"}, true},
		{"blank source", ImportCommand{Kind: "pages", Source: "   "}, true},
		{"sync only mode", ImportCommand{Kind: "pages", Source: "pages.csv", Mode: "create"}, true},
		{"negative author", ImportCommand{Kind: "articles", Source: "a.csv", DefaultAuthorID: -3}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestSyncCommandValidate(t *testing.T) {
	if err := (SyncCommand{Kind: "redirects", Source: "r.csv", Mode: "create"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (SyncCommand{Kind: "redirects", Source: "r.csv", Mode: "update"}).Validate(); err == nil {
		t.Fatal("expected update to be rejected for sync")
	}
}

func TestMessageTypes(t *testing.T) {
	if (ImportCommand{}).Type() != "bulkload.import" {
		t.Fatalf("unexpected import type %q", (ImportCommand{}).Type())
	}
	if (SyncCommand{}).Type() != "bulkload.sync" {
		t.Fatalf("unexpected sync type %q", (SyncCommand{}).Type())
	}
}
