package generation

// readyList - двусторонняя очередь задач на кольцевом буфере.
// Новые и обслуженные задачи кладутся в начало, следующая задача берётся с конца,
// поэтому задача снова обслуживается только после всех остальных задач очереди.
type readyList struct {
	buf  []*Expansion
	head int
	size int
}

func (l *readyList) len() int {
	return l.size
}

func (l *readyList) pushFront(task *Expansion) {
	if l.size == len(l.buf) {
		l.grow()
	}
	l.head = (l.head - 1 + len(l.buf)) % len(l.buf)
	l.buf[l.head] = task
	l.size++
}

func (l *readyList) popBack() (*Expansion, bool) {
	if l.size == 0 {
		return nil, false
	}
	idx := (l.head + l.size - 1) % len(l.buf)
	task := l.buf[idx]
	l.buf[idx] = nil
	l.size--
	return task, true
}

// grow удваивает буфер, сохраняя порядок от head
func (l *readyList) grow() {
	newCap := len(l.buf) * 2
	if newCap == 0 {
		newCap = 4
	}
	buf := make([]*Expansion, newCap)
	for i := 0; i < l.size; i++ {
		buf[i] = l.buf[(l.head+i)%len(l.buf)]
	}
	l.buf = buf
	l.head = 0
}
