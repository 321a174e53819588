// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package version

import "testing"

func TestInfo_String(t *testing.T) {
	if got := (Info{}).String(); got != "dev" {
		t.Errorf("String() = %q, want dev", got)
	}
	if got := (Info{Version: "v1.2.3"}).String(); got != "v1.2.3" {
		t.Errorf("String() = %q, want v1.2.3", got)
	}
}

func TestInfo_Long(t *testing.T) {
	got := Info{Version: "v1.0.0", GitCommit: "abc1234"}.Long("ocms-console")
	want := "ocms-console v1.0.0 (commit: abc1234, built: unknown)"
	if got != want {
		t.Errorf("Long() = %q, want %q", got, want)
	}
}
