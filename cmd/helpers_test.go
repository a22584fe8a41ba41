package cmd

import (
	"testing"

	"github.com/btraven00/lectio/internal/config"
)

func TestSubredditsFrom(t *testing.T) {
	tests := []struct {
		name       string
		configured []string
		args       []string
		want       []string
		wantErr    bool
	}{
		{
			name:       "arguments win over configuration",
			configured: []string{"PhD"},
			args:       []string{"AskAcademia", "GradSchool"},
			want:       []string{"AskAcademia", "GradSchool"},
		},
		{
			name:       "configured list used without arguments",
			configured: []string{"PhD", "AskAcademia"},
			want:       []string{"PhD", "AskAcademia"},
		},
		{
			name:    "no subreddits anywhere",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Subreddits: tt.configured}

			got, err := subredditsFrom(cfg, tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}

				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("subreddit %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
