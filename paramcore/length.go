package paramcore

import "strings"

// LengthEstimator accumulates a worst-case character count for a
// prompt-like field without actually expanding any tag: no RNG draws, no
// wildcard file reads, no sequence advances. It exists so a caller can
// cheaply reject an oversized prompt before running the real interpreter.
type LengthEstimator struct {
	Total int

	// WildcardOptionLen lets the <wildcard> estimator account for the
	// longest option in a file without opening it more than once.
	WildcardOptionLen func(name string) int

	// PeekSeq/PeekWildcardSeq let the seq/wildcardseq estimators read a
	// cursor's next value without advancing it. Both are optional; nil
	// estimates as empty, matching an uninitialized cursor.
	PeekSeq         func(key SequenceKey) (string, bool)
	PeekWildcardSeq func(name string) (string, bool)
}

// NewLengthEstimator creates an estimator with no wildcard or sequence
// lookups configured; every hook-backed tag estimates conservatively as
// empty or a fixed fallback until wired.
func NewLengthEstimator() *LengthEstimator {
	return &LengthEstimator{}
}

// EstimateLength walks s once, adding literal text directly and asking the
// registry for each tag's contribution. Unknown tags contribute their own
// literal length, same as an unmatched tag at parse time. sequences may be
// nil, in which case seq/wildcardseq tags estimate as empty.
func EstimateLength(s string, r *TagRegistry, sequences *SequenceStore) int {
	est := NewLengthEstimator()
	if sequences != nil {
		est.PeekSeq = sequences.Peek
	}
	est.walk(s, r)
	return est.Total
}

func (est *LengthEstimator) walk(s string, r *TagRegistry) {
	i := 0
	for i < len(s) {
		lt := indexByte(s[i:], '<')
		if lt < 0 {
			est.Total += len(s[i:])
			return
		}
		lt += i
		est.Total += lt - i

		end, interior, ok := findTagSpan(s, lt)
		if !ok {
			est.Total++
			i = lt + 1
			continue
		}

		prefix, predata, data, hasColon := splitTagInterior(interior)
		fn, found := r.lengthEstimator(prefix)
		if found {
			est.Total += fn(prefix, predata, dataOrEmpty(hasColon, data), est)
		} else {
			est.Total += end + 1 - lt
		}
		i = end + 1
	}
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

const fallbackWildcardLen = 32

func registerLengthEstimators(r *TagRegistry) {
	r.RegisterLengthEstimator("random", func(prefix, predata, data string, est *LengthEstimator) int {
		max := 0
		for _, opt := range SplitSmartNonEmpty(data) {
			if l := len(opt); l > max {
				max = l
			}
		}
		return max
	})

	r.RegisterLengthEstimator("alternate", func(prefix, predata, data string, est *LengthEstimator) int {
		sum := 0
		for _, opt := range SplitSmartNonEmpty(data) {
			sum += len(opt) + 1
		}
		return sum
	})
	r.estimators["alt"] = r.estimators["alternate"]

	r.RegisterLengthEstimator("fromto", func(prefix, predata, data string, est *LengthEstimator) int {
		return len(data)
	})

	r.RegisterLengthEstimator("wildcard", func(prefix, predata, data string, est *LengthEstimator) int {
		if est.WildcardOptionLen != nil {
			return est.WildcardOptionLen(data)
		}
		return fallbackWildcardLen
	})
	r.estimators["wc"] = r.estimators["wildcard"]

	r.RegisterLengthEstimator("repeat", func(prefix, predata, data string, est *LengthEstimator) int {
		idx := indexByte(data, ',')
		if idx < 0 {
			return len(data)
		}
		n, ok := parsePositiveInt(strings.TrimSpace(data[:idx]))
		if !ok {
			n = 1
		}
		return n * len(data[idx+1:])
	})

	r.RegisterLengthEstimator("preset", func(prefix, predata, data string, est *LengthEstimator) int {
		return 0
	})
	r.estimators["p"] = r.estimators["preset"]

	r.RegisterLengthEstimator("var", func(prefix, predata, data string, est *LengthEstimator) int {
		return 0
	})

	r.RegisterLengthEstimator("setvar", func(prefix, predata, data string, est *LengthEstimator) int {
		return len(data)
	})

	r.RegisterLengthEstimator("trigger", func(prefix, predata, data string, est *LengthEstimator) int {
		return 0
	})
	r.RegisterLengthEstimator("embed", func(prefix, predata, data string, est *LengthEstimator) int {
		return 0
	})
	r.estimators["embedding"] = r.estimators["embed"]
	r.RegisterLengthEstimator("lora", func(prefix, predata, data string, est *LengthEstimator) int {
		return 0
	})

	r.RegisterLengthEstimator("break", func(prefix, predata, data string, est *LengthEstimator) int {
		return len("<break>")
	})

	r.RegisterLengthEstimator("seq", func(prefix, predata, data string, est *LengthEstimator) int {
		if est.PeekSeq == nil {
			return 0
		}
		v, _ := est.PeekSeq(SeqKey(data))
		return len(v)
	})

	r.RegisterLengthEstimator("wildcardseq", func(prefix, predata, data string, est *LengthEstimator) int {
		if est.PeekWildcardSeq == nil {
			return 0
		}
		v, _ := est.PeekWildcardSeq(strings.TrimSpace(data))
		return len(v)
	})
	r.estimators["wcs"] = r.estimators["wildcardseq"]
}

// EstimateFieldLength estimates the worst-case length of a prompt-like
// field without running the interpreter or touching any sequence cursor.
func (in *Input) EstimateFieldLength(desc *ParamDescriptor) int {
	v, ok := in.TryGet(desc)
	if !ok {
		return 0
	}
	return EstimateLength(v.String(), in.Registry, in.Sequences)
}

func parsePositiveInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
