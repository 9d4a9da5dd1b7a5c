package livetiming

import (
	"testing"
)

func testRoster() []*Driver {
	return []*Driver{
		NewDriver(1, "Max VERSTAPPEN", "NED", "Red Bull Racing", "3671C6", "https://example.com/ver.png"),
		NewDriver(44, "Lewis HAMILTON", "GBR", "Mercedes", "27F4D2", "https://example.com/ham.png"),
	}
}

func TestDriverRegistry_LoadIfEmpty(t *testing.T) {
	registry := NewDriverRegistry()

	if len(registry.List()) != 0 || registry.List() == nil {
		t.Logf("Expected an empty, non-nil list before the first load")
		t.Fail()
		return
	}

	if !registry.LoadIfEmpty(testRoster()) {
		t.Logf("First load should have added drivers")
		t.Fail()
		return
	}

	if registry.LoadIfEmpty(testRoster()) {
		t.Logf("Second load should have been ignored")
		t.Fail()
	}

	if registry.Len() != 2 {
		t.Logf("Expected 2 drivers, got: %d", registry.Len())
		t.Fail()
	}

	list := registry.List()

	if list[0].Number != 1 || list[1].Number != 44 {
		t.Logf("Drivers were not kept in insertion order: %v", list)
		t.Fail()
	}

	if list[0].Position != nil || list[0].GapToLeader != nil {
		t.Logf("Position and gap should be unset after load")
		t.Fail()
	}
}

func TestDriverRegistry_Add(t *testing.T) {
	registry := NewDriverRegistry()
	registry.Add(16, "Charles LECLERC", "MON", "Ferrari", "E8002D", "")
	registry.Add(55, "Carlos SAINZ", "ESP", "Ferrari", "E8002D", "")

	driver, ok := registry.Get(55)

	if !ok || driver.Name != "Carlos SAINZ" || driver.TeamColour != "E8002D" {
		t.Logf("Driver was not correctly added: %v", driver)
		t.Fail()
	}

	if registry.LoadIfEmpty(testRoster()) {
		t.Logf("Bulk load should not happen once drivers have been added")
		t.Fail()
	}
}

func TestDriverRegistry_DuplicateNumbers(t *testing.T) {
	registry := NewDriverRegistry()
	registry.LoadIfEmpty(append(testRoster(), NewDriver(1, "Max VERSTAPPEN", "NED", "Red Bull Racing Honda", "3671C6", "")))

	if registry.Len() != 2 {
		t.Logf("Expected 2 drivers, got: %d", registry.Len())
		t.Fail()
	}

	registry.Add(44, "Lewis HAMILTON", "GBR", "Ferrari", "E8002D", "")

	if registry.Len() != 2 || len(registry.List()) != 2 {
		t.Logf("Repeated number was added to the roster: %v", registry.List())
		t.Fail()
	}

	registry.UpdatePosition(1, 3)

	list := registry.List()

	if list[0].Team != "Red Bull Racing" || list[0].Position == nil || *list[0].Position != 3 {
		t.Logf("First record should be kept and updated: %+v", list[0])
		t.Fail()
	}

	if list[1].Team != "Mercedes" {
		t.Logf("First record should be kept: %+v", list[1])
		t.Fail()
	}
}

func TestDriverRegistry_UpdatePosition(t *testing.T) {
	t.Run("Known driver", func(t *testing.T) {
		registry := NewDriverRegistry()
		registry.LoadIfEmpty([]*Driver{NewDriver(1, "A", "", "", "", ""), NewDriver(44, "B", "", "", "", "")})

		registry.UpdatePosition(44, 3)
		registry.UpdatePosition(44, 2)

		driver, _ := registry.Get(44)

		if driver.Position == nil || *driver.Position != 2 {
			t.Logf("Position was not updated to the latest value")
			t.Fail()
		}

		other, _ := registry.Get(1)

		if other.Position != nil {
			t.Logf("Other driver should have been left unset")
			t.Fail()
		}
	})

	t.Run("Unknown driver", func(t *testing.T) {
		registry := NewDriverRegistry()
		registry.LoadIfEmpty([]*Driver{NewDriver(1, "A", "", "", "", "")})

		before := registry.List()

		registry.UpdatePosition(99, 1)
		registry.UpdateGapToLeader(99, "+1.234")

		after := registry.List()

		if len(after) != len(before) || after[0].Position != nil || after[0].GapToLeader != nil {
			t.Logf("Registry changed after update of unknown driver: %v", after)
			t.Fail()
		}
	})
}

func TestDriverRegistry_UpdateGapToLeader(t *testing.T) {
	registry := NewDriverRegistry()
	registry.LoadIfEmpty([]*Driver{NewDriver(4, "Lando NORRIS", "GBR", "McLaren", "FF8000", "")})

	registry.UpdateGapToLeader(4, "+1 LAP")

	driver, _ := registry.Get(4)

	if driver.GapToLeader == nil || *driver.GapToLeader != "+1 LAP" {
		t.Logf("Gap to leader was not updated")
		t.Fail()
	}
}

func TestDriverRegistry_ListIsACopy(t *testing.T) {
	registry := NewDriverRegistry()
	registry.LoadIfEmpty([]*Driver{NewDriver(4, "Lando NORRIS", "GBR", "McLaren", "FF8000", "")})
	registry.UpdatePosition(4, 1)

	list := registry.List()
	*list[0].Position = 20
	list[0].Name = "changed"

	driver, _ := registry.Get(4)

	if *driver.Position != 1 || driver.Name != "Lando NORRIS" {
		t.Logf("Mutating a listed driver changed the registry")
		t.Fail()
	}
}
