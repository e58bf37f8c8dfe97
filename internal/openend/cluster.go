package openend

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// similarityMatrix computes pairwise cosine similarity. Rows are filled concurrently; each
// goroutine writes only its own row.
func similarityMatrix(ctx context.Context, vecs [][]float64) ([][]float64, error) {
	n := len(vecs)
	sim := make([][]float64, n)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := make([]float64, n)
			for j := 0; j < n; j++ {
				if j == i {
					row[j] = 1
					continue
				}
				row[j] = cosineSim(vecs[i], vecs[j])
			}
			sim[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sim, nil
}

// agglomerate merges clusters greedily by average-linkage cosine distance until at most
// maxClusters remain or the closest pair is farther apart than threshold. Ties go to the first
// pair in row-major order. Returns member indices per cluster in creation order.
func agglomerate(sim [][]float64, maxClusters int, threshold float64) [][]int {
	n := len(sim)
	members := make([][]int, n)
	link := make([][]float64, n)
	active := make([]int, n)
	for i := 0; i < n; i++ {
		members[i] = []int{i}
		link[i] = append([]float64(nil), sim[i]...)
		active[i] = i
	}
	for len(active) > maxClusters {
		bi, bj, best := -1, -1, 2.0
		for x := 0; x < len(active); x++ {
			a := active[x]
			for y := x + 1; y < len(active); y++ {
				b := active[y]
				d := 1 - link[a][b]/float64(len(members[a])*len(members[b]))
				if d < best {
					bi, bj, best = x, y, d
				}
			}
		}
		if bi < 0 || best > threshold {
			break
		}
		a, b := active[bi], active[bj]
		for _, k := range active {
			if k == a || k == b {
				continue
			}
			link[a][k] += link[b][k]
			link[k][a] = link[a][k]
		}
		members[a] = append(members[a], members[b]...)
		members[b] = nil
		active = append(active[:bj], active[bj+1:]...)
	}
	out := make([][]int, 0, len(active))
	for _, a := range active {
		out = append(out, members[a])
	}
	return out
}
