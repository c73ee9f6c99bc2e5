package generation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/annel0/worldgen/internal/vec"
)

// LoadRequest - запрос сгенерировать колонки вокруг Origin до радиуса Radius.
// После создания не изменяется.
type LoadRequest struct {
	ID     uuid.UUID
	Origin vec.Vec2
	Radius int
}

// NewLoadRequest создаёт запрос с новым идентификатором
func NewLoadRequest(origin vec.Vec2, radius int) LoadRequest {
	if radius < 0 {
		panic(fmt.Sprintf("generation: отрицательный радиус запроса %d", radius))
	}
	return LoadRequest{ID: uuid.New(), Origin: origin, Radius: radius}
}

// UnitCount возвращает количество единиц работы запроса
func (r LoadRequest) UnitCount() int {
	return r.Radius + 1
}

// Expand возвращает новую последовательность единиц работы запроса
func (r LoadRequest) Expand() *Expansion {
	if r.Radius < 0 {
		panic(fmt.Sprintf("generation: отрицательный радиус запроса %d", r.Radius))
	}
	return &Expansion{request: r}
}

// Expansion - конечная последовательность единиц работы запроса по возрастанию расстояния от центра.
// Для повторного обхода нужно заново вызвать Expand.
type Expansion struct {
	request LoadRequest
	next    int
}

// Next возвращает единицу работы для следующего расстояния
func (e *Expansion) Next() (WorkUnit, bool) {
	if !e.HasNext() {
		return WorkUnit{}, false
	}
	unit := newWorkUnit(e.request, e.next)
	e.next++
	return unit, true
}

// HasNext сообщает, остались ли единицы работы
func (e *Expansion) HasNext() bool {
	return e.next <= e.request.Radius
}

// Remaining возвращает количество оставшихся единиц работы
func (e *Expansion) Remaining() int {
	return e.request.Radius + 1 - e.next
}

// Request возвращает исходный запрос
func (e *Expansion) Request() LoadRequest {
	return e.request
}

// WorkUnit - работа одного шага запроса: по одному курсору колец на каждую стадию.
// Курсор стадии s на расстоянии i заканчивается кольцом i + s.Padding().
// На расстоянии 0 курсор покрывает весь квадрат 0..=Padding(s), дальше - только новое кольцо,
// так что за весь запрос стадия обходит каждую колонку в радиусе Radius+Padding(s) ровно один раз.
// Курсор при i > 0 начинается с внешнего кольца: кольца i..i+Padding(s)-1 уже обошли предыдущие единицы.
type WorkUnit struct {
	Request  LoadRequest
	Distance int
	cursors  [StageCount]RingCursor
}

func newWorkUnit(req LoadRequest, distance int) WorkUnit {
	unit := WorkUnit{Request: req, Distance: distance}
	for _, stage := range Stages() {
		to := distance + stage.Padding()
		from := to
		if distance == 0 {
			from = 0
		}
		unit.cursors[stage] = NewRingCursor(req.Origin, from, to)
	}
	return unit
}

// Cursor возвращает копию курсора стадии
func (u WorkUnit) Cursor(stage Stage) RingCursor {
	return u.cursors[stage]
}

// Columns возвращает все колонки стадии в порядке обхода
func (u WorkUnit) Columns(stage Stage) []vec.Vec2 {
	return u.cursors[stage].Collect()
}

// ColumnCount возвращает суммарное количество колонок по всем стадиям
func (u WorkUnit) ColumnCount() int {
	total := 0
	for _, c := range u.cursors {
		total += c.Len()
	}
	return total
}

func (u WorkUnit) String() string {
	return fmt.Sprintf("%s@%s/%d", u.Request.ID.String()[:8], u.Request.Origin, u.Distance)
}
