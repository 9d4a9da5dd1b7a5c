package livetiming

import (
	"sync"
)

// Driver is a competitor in the current session. Position and GapToLeader stay
// nil until the first positions / intervals snapshot mentions the driver.
type Driver struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Country     string `json:"country"`
	Team        string `json:"team"`
	TeamColour  string `json:"teamColour"`
	HeadshotURL string `json:"headshotUrl"`

	Position    *int    `json:"position"`
	GapToLeader *string `json:"gapToLeader"`
}

func NewDriver(number int, name, country, team, teamColour, headshotURL string) *Driver {
	return &Driver{
		Number:      number,
		Name:        name,
		Country:     country,
		Team:        team,
		TeamColour:  teamColour,
		HeadshotURL: headshotURL,
	}
}

// DriverRegistry holds the roster of the current session in the order the
// upstream API listed it. Unknown driver numbers passed to the update methods
// are ignored.
type DriverRegistry struct {
	drivers        []*Driver
	numberToDriver map[int]*Driver

	rwMutex sync.RWMutex
}

func NewDriverRegistry() *DriverRegistry {
	return &DriverRegistry{
		numberToDriver: make(map[int]*Driver),
	}
}

// List returns a copy of every driver in insertion order.
func (d *DriverRegistry) List() []Driver {
	d.rwMutex.RLock()
	defer d.rwMutex.RUnlock()

	out := make([]Driver, 0, len(d.drivers))

	for _, driver := range d.drivers {
		out = append(out, driver.copy())
	}

	return out
}

func (d *DriverRegistry) Get(number int) (Driver, bool) {
	d.rwMutex.RLock()
	defer d.rwMutex.RUnlock()

	driver, ok := d.numberToDriver[number]

	if !ok {
		return Driver{}, false
	}

	return driver.copy(), true
}

// Add appends a driver to the roster. A number already on the roster is
// ignored and the first record is kept.
func (d *DriverRegistry) Add(number int, name, country, team, teamColour, headshotURL string) {
	d.rwMutex.Lock()
	defer d.rwMutex.Unlock()

	d.add(NewDriver(number, name, country, team, teamColour, headshotURL))
}

func (d *DriverRegistry) add(driver *Driver) {
	if _, ok := d.numberToDriver[driver.Number]; ok {
		return
	}

	d.drivers = append(d.drivers, driver)
	d.numberToDriver[driver.Number] = driver
}

// LoadIfEmpty adds every given driver, but only when the registry holds no
// drivers yet. Repeated numbers keep their first record. It reports whether
// the drivers were added.
func (d *DriverRegistry) LoadIfEmpty(drivers []*Driver) bool {
	d.rwMutex.Lock()
	defer d.rwMutex.Unlock()

	if len(d.drivers) > 0 {
		return false
	}

	for _, driver := range drivers {
		d.add(driver)
	}

	return true
}

func (d *DriverRegistry) UpdatePosition(number, position int) {
	d.rwMutex.Lock()
	defer d.rwMutex.Unlock()

	driver, ok := d.numberToDriver[number]

	if !ok {
		return
	}

	driver.Position = &position
}

func (d *DriverRegistry) UpdateGapToLeader(number int, gap string) {
	d.rwMutex.Lock()
	defer d.rwMutex.Unlock()

	driver, ok := d.numberToDriver[number]

	if !ok {
		return
	}

	driver.GapToLeader = &gap
}

func (d *DriverRegistry) Len() int {
	d.rwMutex.RLock()
	defer d.rwMutex.RUnlock()

	return len(d.drivers)
}

func (driver *Driver) copy() Driver {
	out := *driver

	if driver.Position != nil {
		position := *driver.Position
		out.Position = &position
	}

	if driver.GapToLeader != nil {
		gap := *driver.GapToLeader
		out.GapToLeader = &gap
	}

	return out
}
