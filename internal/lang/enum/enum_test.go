package enum

import (
	"strings"
	"testing"

	"github.com/bates64/vscode-star-rod/pkg/core/srerror"
)

func TestParseEnum(t *testing.T) {
	input := `% item identifiers
namespace = Item
origin = ItemID
direction = normal

Mushroom = 00 % heals 5 HP
FireFlower = 01
Coin = 02
`

	e, err := Parse(input, "item.enum")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if e.Namespace != "Item" {
		t.Errorf("Namespace = %q, expected %q", e.Namespace, "Item")
	}
	if e.Origin != "ItemID" {
		t.Errorf("Origin = %q, expected %q", e.Origin, "ItemID")
	}

	want := []string{"Mushroom", "FireFlower", "Coin"}
	if len(e.Members) != len(want) {
		t.Fatalf("len(Members) = %d, expected %d", len(e.Members), len(want))
	}
	for i, m := range want {
		if e.Members[i] != m {
			t.Errorf("Members[%d] = %q, expected %q", i, e.Members[i], m)
		}
	}
}

func TestParseEnumReversed(t *testing.T) {
	input := `namespace = Story
origin = StoryProgress
direction = reversed

-128 = STORY_INTRO
-127 = STORY_CH0_MET_GOOMPA
`

	e, err := Parse(input, "story.enum")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{"STORY_INTRO", "STORY_CH0_MET_GOOMPA"}
	if len(e.Members) != len(want) {
		t.Fatalf("len(Members) = %d, expected %d", len(e.Members), len(want))
	}
	for i, m := range want {
		if e.Members[i] != m {
			t.Errorf("Members[%d] = %q, expected %q", i, e.Members[i], m)
		}
	}
}

func TestHeaderOrderFlexible(t *testing.T) {
	input := `direction = normal
origin = SoundID
namespace = Sound

Chime = 21
`

	e, err := Parse(input, "sound.enum")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if e.Namespace != "Sound" {
		t.Errorf("Namespace = %q, expected %q", e.Namespace, "Sound")
	}
	if len(e.Members) != 1 || e.Members[0] != "Chime" {
		t.Errorf("Members = %v, expected [Chime]", e.Members)
	}
}

func TestHeadersOnlyIsValid(t *testing.T) {
	input := `namespace = Empty
origin = EmptyID
direction = normal
`

	e, err := Parse(input, "empty.enum")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(e.Members) != 0 {
		t.Errorf("len(Members) = %d, expected 0", len(e.Members))
	}
}

func TestMissingHeadersAreFatal(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "no headers at all",
			input: "Mushroom = 00\n",
		},
		{
			name:  "missing namespace",
			input: "origin = ItemID\ndirection = normal\nMushroom = 00\n",
		},
		{
			name:  "missing origin",
			input: "namespace = Item\ndirection = normal\nMushroom = 00\n",
		},
		{
			name:  "missing direction",
			input: "namespace = Item\norigin = ItemID\nMushroom = 00\n",
		},
		{
			name:  "missing direction without rows",
			input: "namespace = Item\norigin = ItemID\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, "item.enum")
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !srerror.HasCode(err, srerror.CodeParseStructural) {
				t.Errorf("error code = %v, expected %v", srerror.GetCode(err), srerror.CodeParseStructural)
			}
		})
	}
}

func TestUnknownDirectionIsFatal(t *testing.T) {
	input := `namespace = Item
origin = ItemID
direction = sideways
Mushroom = 00
`

	_, err := Parse(input, "item.enum")
	if err == nil {
		t.Fatal("Parse() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "sideways") {
		t.Errorf("error = %q, expected it to name the bad direction", err)
	}
}

func TestRowsWithoutEqualsAreSkipped(t *testing.T) {
	input := `namespace = Item
origin = ItemID
stray line
direction = normal
Mushroom = 00
another stray
Coin = 02
`

	e, err := Parse(input, "item.enum")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{"Mushroom", "Coin"}
	if len(e.Members) != len(want) {
		t.Fatalf("len(Members) = %d, expected %d", len(e.Members), len(want))
	}
	for i, m := range want {
		if e.Members[i] != m {
			t.Errorf("Members[%d] = %q, expected %q", i, e.Members[i], m)
		}
	}
}

func TestParseFlags(t *testing.T) {
	input := `% global flags
GF_MAC01_TalkedToMerlon
GF_MAC01_GateOpen = 7F
GF_KMR00_Intro=01
  GF_Indented
`

	f := ParseFlags(input, "database/flags/global.flags")

	if f.Namespace != "global" {
		t.Errorf("Namespace = %q, expected %q", f.Namespace, "global")
	}

	want := []string{"GF_MAC01_TalkedToMerlon", "GF_MAC01_GateOpen", "GF_KMR00_Intro", "GF_Indented"}
	if len(f.Names) != len(want) {
		t.Fatalf("len(Names) = %d, expected %d", len(f.Names), len(want))
	}
	for i, n := range want {
		if f.Names[i] != n {
			t.Errorf("Names[%d] = %q, expected %q", i, f.Names[i], n)
		}
	}
}

func TestParseFlagsEmpty(t *testing.T) {
	f := ParseFlags("% nothing here\n\n", "mod.flags")
	if len(f.Names) != 0 {
		t.Errorf("len(Names) = %d, expected 0", len(f.Names))
	}
	if f.Namespace != "mod" {
		t.Errorf("Namespace = %q, expected %q", f.Namespace, "mod")
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"database/flags/global.flags", "global"},
		{"story.enum", "story"},
		{"noext", "noext"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Stem(tt.path); got != tt.want {
			t.Errorf("Stem(%q) = %q, expected %q", tt.path, got, tt.want)
		}
	}
}
