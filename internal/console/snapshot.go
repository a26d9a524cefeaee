// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"encoding/json"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// rowSnapshotScript reads every cell of the matched rows in one round trip
const rowSnapshotScript = `rows => rows.map(row => Array.from(row.querySelectorAll('td')).map(td => {
	const a = td.querySelector('a');
	const p = td.querySelector('p');
	const input = td.querySelector('input');
	const text = (td.innerText || '').trim();
	return {
		label: td.getAttribute('data-label') || '',
		key: td.getAttribute('data-key') || '',
		text: text,
		link: a ? (a.innerText || '').trim() : '',
		href: a ? (a.getAttribute('href') || '') : '',
		paragraph: p ? (p.innerText || '').trim() : '',
		lines: text.split('\n').map(l => l.trim()).filter(l => l.length > 0),
		checked: !!(input && input.checked),
	};
}))`

// snapshotRows captures the cells of every row matched by rows
func snapshotRows(rows playwright.Locator) ([]Row, error) {
	raw, err := rows.EvaluateAll(rowSnapshotScript)
	if err != nil {
		return nil, fmt.Errorf("reading table rows: %w", err)
	}
	return decodeRows(raw)
}

func decodeRows(raw interface{}) ([]Row, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding table rows: %w", err)
	}
	return rows, nil
}

// isPlaceholder reports rows such as the "no results" banner that span the whole table
func (r Row) isPlaceholder() bool {
	return len(r) <= 1
}

func decodeFilterItems(raw interface{}) ([]FilterItem, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var items []FilterItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding applied filters: %w", err)
	}
	return items, nil
}
