package resolve

// Levels groups the queue into dependency stages: entries within a stage
// have no dependency on each other, and every entry's dependencies live in
// earlier stages. Stage order follows the queue; so does entry order
// within a stage. An executor may process one stage's entries
// concurrently.
func Levels(r *Result) [][]QueueEntry {
	if len(r.Queue) == 0 {
		return nil
	}

	level := make(map[string]int, len(r.Queue))
	maxLevel := 0
	for _, e := range r.Queue {
		l := 0
		for _, dep := range r.Deps[e.Name] {
			if dl, ok := level[dep]; ok && dl+1 > l {
				l = dl + 1
			}
		}
		level[e.Name] = l
		if l > maxLevel {
			maxLevel = l
		}
	}

	stages := make([][]QueueEntry, maxLevel+1)
	for _, e := range r.Queue {
		l := level[e.Name]
		stages[l] = append(stages[l], e)
	}
	return stages
}
