package registry

// PageWindow converts offset/limit into a half-open slice window over n items.
func PageWindow(offset, limit, n uint64) (uint64, uint64, bool) {
	if offset >= n || limit == 0 {
		return 0, 0, false
	}
	end := n
	if limit < n-offset {
		end = offset + limit
	}
	return offset, end, true
}

// InclusiveWindow converts an inclusive index range into a half-open slice window
// over n items. The end index is clamped to the last item.
func InclusiveWindow(start, end, n uint64) (uint64, uint64, bool) {
	if n == 0 || start > end || start >= n {
		return 0, 0, false
	}
	if end >= n {
		end = n - 1
	}
	return start, end + 1, true
}
