package debtors

import (
	"slices"
	"strings"

	"github.com/mmeshcher/debtdesk/internal/model"
)

// PageSize задаёт число строк на странице.
const PageSize = 10

// Filter оставляет строки, у которых хотя бы одно из полей поиска содержит query без учёта регистра.
// Пустой запрос возвращает строки без изменений.
func Filter(rows []model.DebtorRow, query string) []model.DebtorRow {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return rows
	}

	out := make([]model.DebtorRow, 0, len(rows))
	for _, r := range rows {
		if rowMatches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func rowMatches(r model.DebtorRow, q string) bool {
	fields := [...]string{r.ID, r.Name, r.CPF, r.Status.Label(), r.Contact, r.Date}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// Sort возвращает отсортированную копию строк. Без ключа порядок сохраняется.
// Сортировка устойчивая: равные элементы остаются в исходном порядке.
func Sort(rows []model.DebtorRow, key model.SortKey, dir model.SortDir) []model.DebtorRow {
	out := slices.Clone(rows)

	var cmp func(a, b model.DebtorRow) int
	switch key {
	case model.SortAmount:
		cmp = func(a, b model.DebtorRow) int { return a.Amount.Cmp(b.Amount) }
	case model.SortDate:
		cmp = func(a, b model.DebtorRow) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return out
	}

	if dir == model.SortDesc {
		asc := cmp
		cmp = func(a, b model.DebtorRow) int { return -asc(a, b) }
	}

	slices.SortStableFunc(out, cmp)
	return out
}

// TotalPages возвращает число страниц; минимум одна, даже для пустого списка.
func TotalPages(count, size int) int {
	if size <= 0 || count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// ClampPage приводит номер страницы к диапазону [1, totalPages].
func ClampPage(page, totalPages int) int {
	return max(1, min(page, totalPages))
}

// Paginate возвращает строки страницы page. Номер страницы предварительно ограничивается.
func Paginate(rows []model.DebtorRow, page, size int) []model.DebtorRow {
	page = ClampPage(page, TotalPages(len(rows), size))
	start := (page - 1) * size
	if start >= len(rows) {
		return []model.DebtorRow{}
	}
	end := min(start+size, len(rows))
	return slices.Clone(rows[start:end])
}
