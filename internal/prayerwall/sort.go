package prayerwall

import (
	"sort"

	"github.com/daylight-community/daylight-go/internal/models"
)

// SortedBy returns a derived ordering of the loaded wall. It is a pure view
// over in-memory state; no network call is made and the wall's own order is
// left untouched.
//
//   - SortNewest: descending by creation time.
//   - SortMostPrayed: descending by prayer count; ties keep their original
//     relative order.
//   - SortAnswered: answered requests only, descending by answered time with
//     undated entries last.
//
// An unknown option returns the wall in its loaded order.
func (w *Wall) SortedBy(option SortOption) []models.PrayerRequest {
	requests := w.Requests()

	switch option {
	case SortNewest:
		sort.SliceStable(requests, func(i, j int) bool {
			return requests[i].CreatedAt.After(requests[j].CreatedAt)
		})
	case SortMostPrayed:
		sort.SliceStable(requests, func(i, j int) bool {
			return requests[i].PrayerCount > requests[j].PrayerCount
		})
	case SortAnswered:
		answered := requests[:0]
		for _, req := range requests {
			if req.Answered() {
				answered = append(answered, req)
			}
		}
		requests = answered
		sort.SliceStable(requests, func(i, j int) bool {
			a, b := requests[i].AnsweredAt, requests[j].AnsweredAt
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.After(*b)
		})
	}

	return requests
}
