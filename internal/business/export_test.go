package business

// Waiters returns the number of attempts waiting for the search of id
func (r *Resolver) Waiters(id int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.flights[id]; ok {
		return f.waiters
	}
	return 0
}
