package assets

import "testing"

func TestCastCoversEveryCharacter(t *testing.T) {
	cast := Cast()
	if len(cast) != len(Characters) {
		t.Fatalf("cast size = %d, want %d", len(cast), len(Characters))
	}
	for _, def := range Characters {
		p := cast[def.ID]
		if p == nil {
			t.Fatalf("missing pack for %q", def.ID)
		}
		if p.DefaultEmotion() != def.Emotions[0] {
			t.Errorf("%s default emotion = %q", def.ID, p.DefaultEmotion())
		}
		_, hasVoice := p.DefaultVoice()
		if hasVoice != (def.Tone > 0) {
			t.Errorf("%s has voice = %v, tone %v", def.ID, hasVoice, def.Tone)
		}
	}
}

func TestScenesBuild(t *testing.T) {
	scenes, err := Scenes()
	if err != nil {
		t.Fatalf("Scenes: %v", err)
	}
	if len(scenes) != len(SceneDefs) {
		t.Fatalf("scenes = %d, want %d", len(scenes), len(SceneDefs))
	}
	for i, sc := range scenes {
		if sc.ID() != SceneDefs[i].ID {
			t.Errorf("scene %d id = %q", i, sc.ID())
		}
		if sc.Len() == 0 {
			t.Errorf("scene %q is empty", sc.ID())
		}
	}
}

// Only Orrin's "tired" face is deliberately missing.
func TestUnmappedEmotions(t *testing.T) {
	cast := Cast()
	for id, p := range cast {
		got := p.Unmapped()
		switch id {
		case Orrin:
			if len(got) != 1 || got[0] != "tired" {
				t.Errorf("orrin unmapped = %v, want [tired]", got)
			}
		default:
			if len(got) != 0 {
				t.Errorf("%s unmapped = %v, want none", id, got)
			}
		}
	}
}

func TestOneOffClipsReplaceBlips(t *testing.T) {
	scenes, err := Scenes()
	if err != nil {
		t.Fatal(err)
	}
	for _, sc := range scenes {
		for i := 0; i < sc.Len(); i++ {
			l, _ := sc.LineAt(i)
			if l.Voice.Valid() && l.Voice.Length <= 0 {
				t.Errorf("%s line %d: clip without length", sc.ID(), i)
			}
		}
	}
}
