package producer

import "time"

type Option func(*Producer)

func ConnAttempts(attempts int) Option {
	return func(p *Producer) {
		p.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(p *Producer) {
		p.connTimeout = timeout
	}
}

// BatchTimeout bounds how long a partial batch waits before it is flushed.
func BatchTimeout(timeout time.Duration) Option {
	return func(p *Producer) {
		if timeout > 0 {
			p.batchTimeout = timeout
		}
	}
}

func WriteTimeout(timeout time.Duration) Option {
	return func(p *Producer) {
		if timeout > 0 {
			p.writeTimeout = timeout
		}
	}
}
