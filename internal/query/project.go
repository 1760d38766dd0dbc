package query

import "encoding/json"

// Project keeps only the selected json fields (plus id) of each record.
// With no fields selected the records are returned unchanged.
func Project[T any](records []T, fields []string) (any, error) {
	if len(fields) == 0 {
		return records, nil
	}

	keep := map[string]struct{}{"id": {}}
	for _, f := range fields {
		keep[f] = struct{}{}
	}

	out := make([]map[string]json.RawMessage, 0, len(records))

	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}

		var full map[string]json.RawMessage
		if err := json.Unmarshal(b, &full); err != nil {
			return nil, err
		}

		picked := make(map[string]json.RawMessage, len(keep))
		for k, v := range full {
			if _, ok := keep[k]; ok {
				picked[k] = v
			}
		}

		out = append(out, picked)
	}

	return out, nil
}
