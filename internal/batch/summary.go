package batch

import (
	"sort"

	"scenebatch/internal/pipeline"
	"scenebatch/internal/scene"
)

// Summary is the batch-wide aggregate. Paths and failure lists are sorted so
// the summary is identical regardless of worker completion order.
type Summary struct {
	ScenesTotal            int
	VideoPaths             []string
	PointCloudPaths        []string
	DescriptorPaths        []string
	VideoFailures          []string
	ReconstructionFailures []string
	DescriptorFailures     []string
	Results                []pipeline.Result
}

// VideoCount returns the number of produced videos.
func (s Summary) VideoCount() int { return len(s.VideoPaths) }

// DescriptorCount returns the number of produced descriptors.
func (s Summary) DescriptorCount() int { return len(s.DescriptorPaths) }

type aggregator struct {
	videoPaths       map[string]struct{}
	pointCloudPaths  map[string]struct{}
	descriptorPaths  map[string]struct{}
	videoFailed      map[string]struct{}
	reconFailed      map[string]struct{}
	descriptorFailed map[string]struct{}
	results          []pipeline.Result
}

func newAggregator(capacity int) *aggregator {
	return &aggregator{
		videoPaths:       make(map[string]struct{}),
		pointCloudPaths:  make(map[string]struct{}),
		descriptorPaths:  make(map[string]struct{}),
		videoFailed:      make(map[string]struct{}),
		reconFailed:      make(map[string]struct{}),
		descriptorFailed: make(map[string]struct{}),
		results:          make([]pipeline.Result, 0, capacity),
	}
}

func (a *aggregator) add(result pipeline.Result) {
	a.results = append(a.results, result)
	for _, view := range result.Views {
		switch view.Outcome.Status {
		case scene.StatusSuccess:
			a.videoPaths[view.Outcome.Path] = struct{}{}
		case scene.StatusFailed:
			a.videoFailed[result.Scene.ID] = struct{}{}
		}
	}
	switch result.PointCloud.Status {
	case scene.StatusSuccess:
		a.pointCloudPaths[result.PointCloud.Path] = struct{}{}
	case scene.StatusFailed:
		a.reconFailed[result.Scene.ID] = struct{}{}
	}
	switch result.Descriptor.Status {
	case scene.StatusSuccess:
		a.descriptorPaths[result.Descriptor.Path] = struct{}{}
	case scene.StatusFailed:
		a.descriptorFailed[result.Scene.ID] = struct{}{}
	}
}

func (a *aggregator) summary() Summary {
	s := Summary{
		ScenesTotal:            len(a.results),
		VideoPaths:             sortedKeys(a.videoPaths),
		PointCloudPaths:        sortedKeys(a.pointCloudPaths),
		DescriptorPaths:        sortedKeys(a.descriptorPaths),
		VideoFailures:          sortedKeys(a.videoFailed),
		ReconstructionFailures: sortedKeys(a.reconFailed),
		DescriptorFailures:     sortedKeys(a.descriptorFailed),
		Results:                a.results,
	}
	sort.Slice(s.Results, func(i, j int) bool { return s.Results[i].Scene.ID < s.Results[j].Scene.ID })
	return s
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
