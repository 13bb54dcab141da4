package extraction

import (
	"reflect"
	"testing"
)

var topicPalette = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#06B6D4"}

func TestTopKeywords(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "empty", content: "", want: nil},
		{name: "only short and stop words", content: "the cat and a dog with it", want: nil},
		{
			name:    "frequency order",
			content: "Energy flows. energy moves; ENERGY, cells cells divide",
			// punctuation stays attached to the word
			want: []string{"energy", "cells", "flows.", "moves;", "energy,"},
		},
		{
			name:    "ties keep first occurrence",
			content: "delta alpha gamma beta alpha beta",
			want:    []string{"alpha", "beta", "delta", "gamma"},
		},
		{
			name:    "caps at five",
			content: "aaaa bbbb cccc dddd eeee ffff gggg",
			want:    []string{"aaaa", "bbbb", "cccc", "dddd", "eeee"},
		},
		{
			name:    "length counts characters not bytes",
			content: "été éléphant",
			want:    []string{"éléphant"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopKeywords(tt.content, 5)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopKeywords() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFallbackTopics(t *testing.T) {
	set := FallbackTopics("mitochondria produce energy, mitochondria store energy mitochondria", topicPalette)

	if set.Title != "Content Overview" {
		t.Errorf("Title = %q", set.Title)
	}
	if len(set.MainTopics) != 5 {
		t.Fatalf("MainTopics = %d, want 5: %+v", len(set.MainTopics), set.MainTopics)
	}

	first := set.MainTopics[0]
	if first.Topic != "Mitochondria" {
		t.Errorf("Topic = %q", first.Topic)
	}
	wantSubs := []string{"Key concept: mitochondria", "Related to: produce", "Important for understanding"}
	if !reflect.DeepEqual(first.Subtopics, wantSubs) {
		t.Errorf("Subtopics = %v, want %v", first.Subtopics, wantSubs)
	}

	last := set.MainTopics[len(set.MainTopics)-1]
	if last.Subtopics[1] != "Related to: mitochondria" {
		t.Errorf("last topic should relate cyclically to the first, got %q", last.Subtopics[1])
	}

	for i, mt := range set.MainTopics {
		if mt.Color != topicPalette[i%len(topicPalette)] {
			t.Errorf("topic %d colour = %q", i, mt.Color)
		}
	}
}

func TestFallbackTopicsEmpty(t *testing.T) {
	set := FallbackTopics("   ", topicPalette)
	if set.Title != "Content Overview" || len(set.MainTopics) != 0 {
		t.Errorf("unexpected %+v", set)
	}
}

func TestFallbackTopicsDeterministic(t *testing.T) {
	content := "graphs trees graphs nodes edges trees paths cycles"
	a := FallbackTopics(content, topicPalette)
	b := FallbackTopics(content, topicPalette)
	if !reflect.DeepEqual(a, b) {
		t.Error("FallbackTopics is not deterministic")
	}
}
