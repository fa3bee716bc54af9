package playback

import "testing"

func TestDisplayTitle_FallsBackToLastKnown(t *testing.T) {
	tests := []struct {
		name string
		st   State
		want string
	}{
		{"current title wins", State{Title: "Now", LastKnownTitle: "Before"}, "Now"},
		{"falls back", State{LastKnownTitle: "Before"}, "Before"},
		{"both empty", State{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.st.DisplayTitle(); got != tt.want {
				t.Errorf("DisplayTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayArtist_FallsBackToLastKnown(t *testing.T) {
	st := State{LastKnownArtist: "Someone"}
	if got := st.DisplayArtist(); got != "Someone" {
		t.Errorf("DisplayArtist() = %q, want Someone", got)
	}
	st.Artist = "Current"
	if got := st.DisplayArtist(); got != "Current" {
		t.Errorf("DisplayArtist() = %q, want Current", got)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "Idle"},
		{PhaseReleasing, "Releasing"},
		{PhaseAcquiring, "Acquiring"},
		{PhaseReady, "Ready"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestViewModeString(t *testing.T) {
	tests := []struct {
		mode ViewMode
		want string
	}{
		{ViewExpanded, "Expanded"},
		{ViewMinimized, "Minimized"},
		{ViewCinema, "Cinema"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("ViewMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
