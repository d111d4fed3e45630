package warehouse

import (
	"fmt"
	"time"

	"warehouse-sim-backend/config"
	"warehouse-sim-backend/internal/equipment"
	"warehouse-sim-backend/internal/model"
	"warehouse-sim-backend/internal/parse"
)

type fleetDefaults struct {
	prefix      string
	speed       float64
	capacity    float64
	baseBattery int
	spread      int
}

var kindDefaults = map[equipment.Kind]fleetDefaults{
	equipment.KindAGV:     {prefix: "AGV", speed: 20, capacity: 100, baseBattery: 50, spread: 40},
	equipment.KindShuttle: {prefix: "SH", speed: 15, capacity: 80, baseBattery: 60, spread: 30},
	equipment.KindCrane:   {prefix: "CR", speed: 10, capacity: 200, baseBattery: 70, spread: 20},
}

func (w *Warehouse) buildEquipment(wc config.WarehouseConfig) error {
	if len(wc.Equipment) > 0 {
		for _, ec := range wc.Equipment {
			kind, err := equipment.ParseKind(ec.Kind)
			if err != nil {
				return fmt.Errorf("equipment %s: %w", ec.ID, err)
			}
			pos := model.Position{}
			if ec.Position != "" {
				if pos, err = parse.ParsePosition(ec.Position); err != nil {
					return fmt.Errorf("equipment %s: %w", ec.ID, err)
				}
			}
			d := kindDefaults[kind]
			speed, capacity := ec.Speed, ec.Capacity
			if speed <= 0 {
				speed = d.speed
			}
			if capacity <= 0 {
				capacity = d.capacity
			}
			if err := w.equipment.Add(equipment.New(ec.ID, kind, pos, speed, ec.Battery, capacity)); err != nil {
				return err
			}
		}
		return nil
	}

	counts := []struct {
		kind equipment.Kind
		n    int
	}{
		{equipment.KindAGV, wc.Fleet.AGVs},
		{equipment.KindShuttle, wc.Fleet.Shuttles},
		{equipment.KindCrane, wc.Fleet.Cranes},
	}
	for _, c := range counts {
		d := kindDefaults[c.kind]
		for i := 1; i <= c.n; i++ {
			id := fmt.Sprintf("%s%03d", d.prefix, i)
			pos := model.NewPosition((i-1)%wc.Grid.X, ((i-1)/wc.Grid.X)%wc.Grid.Y, 0)
			battery := d.baseBattery + (i*7)%d.spread
			if err := w.equipment.Add(equipment.New(id, c.kind, pos, d.speed, battery, d.capacity)); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildStations(wc config.WarehouseConfig, step time.Duration) ([]*equipment.ChargingStation, error) {
	var stations []*equipment.ChargingStation
	if len(wc.Stations) > 0 {
		for _, sc := range wc.Stations {
			pos := model.Position{}
			if sc.Position != "" {
				p, err := parse.ParsePosition(sc.Position)
				if err != nil {
					return nil, fmt.Errorf("station %s: %w", sc.ID, err)
				}
				pos = p
			}
			power := sc.PowerKW
			if power <= 0 {
				power = 2
			}
			stations = append(stations, equipment.NewStation(sc.ID, pos, power, step))
		}
		return stations, nil
	}

	for i := 1; i <= wc.StationCount; i++ {
		id := fmt.Sprintf("CS%03d", i)
		pos := model.NewPosition((i-1)%wc.Grid.X, 0, 0)
		stations = append(stations, equipment.NewStation(id, pos, float64(2+(i-1)%3), step))
	}
	return stations, nil
}

func (w *Warehouse) buildItems(wc config.WarehouseConfig) error {
	if len(wc.Items) > 0 {
		for _, ic := range wc.Items {
			item := model.NewItem(ic.ID, ic.Description, ic.Weight, model.Position{})
			if err := w.AddItem(item); err != nil {
				return err
			}
			if ic.StoreAt == "" {
				continue
			}
			pos, err := parse.ParsePosition(ic.StoreAt)
			if err != nil {
				return fmt.Errorf("item %s: %w", ic.ID, err)
			}
			if err := w.storage.AddItemAt(item, pos); err != nil {
				return fmt.Errorf("item %s: %w", ic.ID, err)
			}
		}
		return nil
	}

	for i := 1; i <= wc.ItemCount; i++ {
		item := model.NewItem(fmt.Sprintf("ITEM-%03d", i), fmt.Sprintf("Product %d", i), float64(1+i%5), model.Position{})
		if err := w.AddItem(item); err != nil {
			return err
		}
	}
	return nil
}
