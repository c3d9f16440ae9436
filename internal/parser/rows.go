package parser

import (
	"math"
	"sort"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// ClusterRows groups tokens into visual lines. Pages are clustered
// independently. A token joins the current line when its mid-Y lies within
// tolerance of the line's running mean, so a line may drift as it grows.
// Rows come back ordered by page then Y, tokens within a row by X0.
func ClusterRows(tokens []models.Token, tolerance float64) []models.Row {
	if len(tokens) == 0 {
		return nil
	}
	if tolerance <= 0 {
		tolerance = DefaultRowTolerance
	}

	sorted := make([]models.Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}
		return sorted[i].MidY() < sorted[j].MidY()
	})

	var (
		rows []models.Row
		sum  float64
	)
	for _, tok := range sorted {
		if n := len(rows); n > 0 {
			cur := &rows[n-1]
			if cur.Page == tok.Page && math.Abs(tok.MidY()-cur.Y) <= tolerance {
				cur.Tokens = append(cur.Tokens, tok)
				sum += tok.MidY()
				cur.Y = sum / float64(len(cur.Tokens))
				continue
			}
		}
		rows = append(rows, models.Row{Page: tok.Page, Y: tok.MidY(), Tokens: []models.Token{tok}})
		sum = tok.MidY()
	}

	for i := range rows {
		toks := rows[i].Tokens
		sort.SliceStable(toks, func(a, b int) bool { return toks[a].X0 < toks[b].X0 })
	}
	return rows
}

// GroupTokens merges visually adjacent tokens into phrase tokens, e.g. the
// split header "Value" "Date". A group holds at most maxGroup tokens.
func GroupTokens(tokens []models.Token, maxGroup int) []models.Token {
	groups := groupTokens(tokens, maxGroup)
	out := make([]models.Token, 0, len(groups))
	for _, g := range groups {
		out = append(out, mergeTokens(g))
	}
	return out
}

// groupTokens walks adjacency breadth-first from each unvisited token in
// reading order.
func groupTokens(tokens []models.Token, maxGroup int) [][]models.Token {
	if len(tokens) == 0 {
		return nil
	}
	if maxGroup <= 0 {
		maxGroup = DefaultMaxGroup
	}

	avgW, avgH := averageSize(tokens)
	order := make([]int, len(tokens))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ta, tb := tokens[order[a]], tokens[order[b]]
		if ta.Page != tb.Page {
			return ta.Page < tb.Page
		}
		return ta.X0 < tb.X0
	})

	visited := make([]bool, len(tokens))
	var groups [][]models.Token
	for _, start := range order {
		if visited[start] {
			continue
		}
		visited[start] = true
		members := []models.Token{tokens[start]}
		box := tokens[start]
		queue := []int{start}

		for len(queue) > 0 && len(members) < groupChainLimit {
			cur := queue[0]
			queue = queue[1:]
			for _, cand := range order {
				if visited[cand] || len(members) >= maxGroup {
					continue
				}
				if !adjacent(tokens[cur], tokens[cand], avgW, avgH) {
					continue
				}
				grown := union(box, tokens[cand])
				if grown.Width() > 5*avgW || grown.Height() > 1.5*avgH {
					continue
				}
				visited[cand] = true
				box = grown
				members = append(members, tokens[cand])
				queue = append(queue, cand)
			}
		}

		sort.SliceStable(members, func(a, b int) bool { return members[a].X0 < members[b].X0 })
		groups = append(groups, members)
	}
	return groups
}

func adjacent(a, b models.Token, avgW, avgH float64) bool {
	if a.Page != b.Page {
		return false
	}
	overlap := math.Min(a.Y1, b.Y1) - math.Max(a.Y0, b.Y0)
	if overlap < 0.6*avgH {
		return false
	}
	gap := math.Max(b.X0-a.X1, a.X0-b.X1)
	return gap <= 0.5*avgW
}

func averageSize(tokens []models.Token) (w, h float64) {
	for _, t := range tokens {
		w += t.Width()
		h += t.Height()
	}
	n := float64(len(tokens))
	return w / n, h / n
}

func union(a, b models.Token) models.Token {
	return models.Token{
		X0:   math.Min(a.X0, b.X0),
		Y0:   math.Min(a.Y0, b.Y0),
		X1:   math.Max(a.X1, b.X1),
		Y1:   math.Max(a.Y1, b.Y1),
		Page: a.Page,
	}
}

func mergeTokens(members []models.Token) models.Token {
	box := members[0]
	parts := []string{strings.TrimSpace(members[0].Text)}
	for _, m := range members[1:] {
		box = union(box, m)
		parts = append(parts, strings.TrimSpace(m.Text))
	}
	box.Text = strings.Join(parts, " ")
	return box
}
