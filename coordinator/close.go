package coordinator

import "github.com/hashicorp/go-multierror"

// Close closes every connected worker's transport, aggregating any
// close errors rather than stopping at the first, the same shape the
// teacher's own inferer-slice Close uses for closing multiple resources
// at once.
func (c *Coordinator) Close() error {
	var result *multierror.Error
	for conn := range c.workers {
		if conn == nil {
			continue
		}
		if err := conn.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
