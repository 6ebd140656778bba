// Package sync reconciles the local and remote copies of a study's acts.
package sync

import (
	"fmt"
	"sort"

	"github.com/xelth-com/huissierpro/internal/models"
)

// Source identifies which copy a version came from.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// Strategy names the rule that decided a conflict.
type Strategy string

const (
	StrategyLastWriteWins Strategy = "last_write_wins"
	StrategyPendingLocal  Strategy = "pending_local"
	StrategyIdentical     Strategy = "identical"
)

// Version is one copy of an act taking part in a conflict.
type Version struct {
	Act     models.Act
	Source  Source
	Pending bool // local edit not yet confirmed by the remote store
}

// Resolution is the outcome of resolving one conflict.
type Resolution struct {
	Strategy     Strategy
	WinnerSource Source
	Reason       string
	Act          models.Act
	// StatusKept is set when the winner's status was raised to the loser's.
	StatusKept bool
}

// Resolver decides between two copies of the same act using last-write-wins
// on UpdatedAt. A resolution never moves the status backwards.
type Resolver struct{}

// NewResolver creates a conflict resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve picks the copy to keep.
func (r *Resolver) Resolve(local, remote Version) Resolution {
	res := r.pick(local, remote)

	loser := remote
	if res.WinnerSource == SourceRemote {
		loser = local
	}
	if loser.Act.Status.Rank() > res.Act.Status.Rank() {
		res.Act.Status = loser.Act.Status
		res.StatusKept = true
		res.Reason += fmt.Sprintf("; status kept at %s", loser.Act.Status)
	}
	return res
}

func (r *Resolver) pick(local, remote Version) Resolution {
	lt, rt := local.Act.UpdatedAt, remote.Act.UpdatedAt

	switch {
	case lt.After(rt):
		return Resolution{
			Strategy:     StrategyLastWriteWins,
			WinnerSource: SourceLocal,
			Reason:       fmt.Sprintf("Local timestamp (%s) is more recent than remote (%s)", lt, rt),
			Act:          local.Act.Clone(),
		}
	case rt.After(lt):
		return Resolution{
			Strategy:     StrategyLastWriteWins,
			WinnerSource: SourceRemote,
			Reason:       fmt.Sprintf("Remote timestamp (%s) is more recent than local (%s)", rt, lt),
			Act:          remote.Act.Clone(),
		}
	}

	if Checksum(local.Act) == Checksum(remote.Act) {
		return Resolution{
			Strategy:     StrategyIdentical,
			WinnerSource: SourceRemote,
			Reason:       "Both copies carry the same content",
			Act:          remote.Act.Clone(),
		}
	}
	if local.Pending {
		return Resolution{
			Strategy:     StrategyPendingLocal,
			WinnerSource: SourceLocal,
			Reason:       "Equal timestamps, local copy has an unsynced edit",
			Act:          local.Act.Clone(),
		}
	}
	return Resolution{
		Strategy:     StrategyLastWriteWins,
		WinnerSource: SourceRemote,
		Reason:       "Equal timestamps, remote copy is authoritative",
		Act:          remote.Act.Clone(),
	}
}

// Merge combines a remote listing with the local cache. Local acts that are
// pending win or lose against their remote copy via Resolve; pending acts the
// remote store has never seen are kept. Local acts that are not pending are
// dropped in favour of the remote listing. The result is ordered by date,
// newest first.
func (r *Resolver) Merge(local, remote []models.Act, pending map[string]bool) ([]models.Act, []Resolution) {
	byID := make(map[string]int, len(remote))
	out := make([]models.Act, 0, len(remote)+len(pending))
	for _, a := range remote {
		byID[a.ID] = len(out)
		out = append(out, a.Clone())
	}

	var resolutions []Resolution
	for _, a := range local {
		if !pending[a.ID] {
			continue
		}
		idx, ok := byID[a.ID]
		if !ok {
			out = append(out, a.Clone())
			continue
		}
		res := r.Resolve(
			Version{Act: a, Source: SourceLocal, Pending: true},
			Version{Act: out[idx], Source: SourceRemote},
		)
		out[idx] = res.Act
		resolutions = append(resolutions, res)
	}

	SortByDateDesc(out)
	return out, resolutions
}

// SortByDateDesc orders acts newest first, breaking ties on UpdatedAt.
func SortByDateDesc(acts []models.Act) {
	sort.SliceStable(acts, func(i, j int) bool {
		if acts[i].Date != acts[j].Date {
			return acts[i].Date > acts[j].Date
		}
		return acts[i].UpdatedAt.After(acts[j].UpdatedAt)
	})
}
