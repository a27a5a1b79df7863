package diag

// Bag is an ordered set of diagnostics keyed by Location.
// Insertion order is preserved so repeated runs over identical checker output
// visit locations identically.
type Bag struct {
	items []Diagnostic
	index map[Location]int
}

func NewBag() *Bag {
	return &Bag{
		items: make([]Diagnostic, 0),
		index: make(map[Location]int),
	}
}

// Add добавляет диагностику, если такой Location ещё не было.
// Повтор с более высокой severity заменяет сохранённую запись на её месте,
// чтобы warning перед error не скрывал ошибку. Возвращает false для дубликата.
func (b *Bag) Add(d Diagnostic) bool {
	key := d.Location()
	if i, dup := b.index[key]; dup {
		if d.Severity > b.items[i].Severity {
			b.items[i] = d
		}
		return false
	}
	b.index[key] = len(b.items)
	b.items = append(b.items, d)
	return true
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез!
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// Actionable returns a new Bag holding only error locations, the ones
// implicated in a failed check.
func (b *Bag) Actionable() *Bag {
	out := NewBag()
	for _, d := range b.items {
		if d.Severity >= SevError {
			out.Add(d)
		}
	}
	return out
}
