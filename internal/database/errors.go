package database

import "errors"

var (
	// ErrNotFound запрошенная запись отсутствует
	ErrNotFound = errors.New("record not found")

	// ErrSlotConflict интервал пересекается с существующей записью мастера
	ErrSlotConflict = errors.New("time slot conflicts with an existing booking")

	// ErrPastSlot запись на прошедшее время запрещена
	ErrPastSlot = errors.New("booking slot is in the past")

	// ErrInvalidSlot дата или слот не разбираются либо слот вне сетки
	ErrInvalidSlot = errors.New("booking date or slot is malformed or off the grid")

	// ErrDateTooFar запись дальше разрешённого горизонта
	ErrDateTooFar = errors.New("booking date is too far in the future")

	// ErrUnknownService услуга не найдена в каталоге
	ErrUnknownService = errors.New("unknown service")

	// ErrInvalidReference мастер не принадлежит указанному салону
	ErrInvalidReference = errors.New("master does not belong to the salon")

	// ErrOutsideWorkingHours интервал не помещается в часы работы салона
	ErrOutsideWorkingHours = errors.New("slot falls outside salon working hours")

	// ErrAlreadyTerminal запись уже завершена или отменена
	ErrAlreadyTerminal = errors.New("booking is already completed or cancelled")

	// ErrNegativeBalance списание превышает баланс бонусов
	ErrNegativeBalance = errors.New("loyalty balance would go negative")

	// ErrConcurrentModification конфликт версий при обновлении
	ErrConcurrentModification = errors.New("booking was modified concurrently")

	// ErrStoreUnavailable хранилище не ответило вовремя
	ErrStoreUnavailable = errors.New("storage unavailable")
)
