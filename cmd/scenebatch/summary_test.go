package main

import (
	"strings"
	"testing"

	"scenebatch/internal/batch"
)

func TestPrintSummaryAllStages(t *testing.T) {
	summary := batch.Summary{
		ScenesTotal:            3,
		VideoPaths:             []string{"/d/scene_001/scene_001_front.mp4", "/d/scene_002/scene_002_front.mp4"},
		PointCloudPaths:        []string{"/d/scene_001/scene_001.pcd"},
		DescriptorPaths:        []string{"/d/scene_001/scene_001.fo3d"},
		ReconstructionFailures: []string{"scene_002"},
	}

	var buf strings.Builder
	printSummary(&buf, batch.StageAll, summary)
	output := buf.String()

	for _, want := range []string{
		"Scenes processed",
		"Videos created",
		"Point clouds created",
		"Descriptors created",
		"scene_002",
	} {
		if !strings.Contains(output, want) {
			t.Fatalf("summary missing %q:\n%s", want, output)
		}
	}

	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "Videos created") && !strings.Contains(line, "2") {
			t.Fatalf("video count missing from row: %q", line)
		}
		if strings.Contains(line, "Point clouds created") && !strings.Contains(line, "1") {
			t.Fatalf("point cloud count missing from row: %q", line)
		}
	}
}

func TestPrintSummaryStageModeOmitsOtherRows(t *testing.T) {
	var buf strings.Builder
	printSummary(&buf, batch.StageVideos, batch.Summary{ScenesTotal: 2})
	output := buf.String()

	if !strings.Contains(output, "Videos created") {
		t.Fatalf("videos row missing:\n%s", output)
	}
	if strings.Contains(output, "Point clouds created") || strings.Contains(output, "Descriptors created") {
		t.Fatalf("stage mode must only show its own row:\n%s", output)
	}
}

func TestJoinScenesTruncates(t *testing.T) {
	if got := joinScenes(nil); got != "-" {
		t.Fatalf("empty list: %q", got)
	}
	if got := joinScenes([]string{"scene_001", "scene_002"}); got != "scene_001, scene_002" {
		t.Fatalf("short list: %q", got)
	}

	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	got := joinScenes(ids)
	if !strings.HasSuffix(got, "(+2 more)") {
		t.Fatalf("long list not truncated: %q", got)
	}
	if strings.Contains(got, "f") || strings.Contains(got, "g") {
		t.Fatalf("truncated entries leaked: %q", got)
	}
}
