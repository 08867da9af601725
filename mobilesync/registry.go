package mobilesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmagritech/farm_backend/models"
	"bitbucket.org/mmagritech/farm_backend/utils"
)

// Registry returns every synced collection in dependency order: farms before
// sheds before livestock before the event types, so a record and its parent
// pushed in one request both land.
func Registry() []Collection {
	return []Collection{
		buildCollection(farmsDescriptor()),
		buildCollection(shedsDescriptor()),
		buildCollection(livestockDescriptor()),
		buildCollection(birthsDescriptor()),
		buildCollection(deathsDescriptor()),
		buildCollection(transfersDescriptor()),
		buildCollection(salesDescriptor()),
		buildCollection(vaccinationsDescriptor()),
		buildCollection(dewormingsDescriptor()),
		buildCollection(treatmentsDescriptor()),
		buildCollection(pregnancyChecksDescriptor()),
		buildCollection(milkingsDescriptor()),
		buildCollection(weightsDescriptor()),
		buildCollection(inseminationsDescriptor()),
		buildCollection(dryOffsDescriptor()),
		buildCollection(heatsDescriptor()),
		buildCollection(expensesDescriptor()),
	}
}

var (
	farmerPush = []models.UserRole{models.RoleFarmer}
	// Vets record health work on assigned farms; everything else is the
	// farmer's own data.
	healthPush = []models.UserRole{models.RoleFarmer, models.RoleVet}
)

func wireTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func wireTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return wireTime(*t)
}

func optRef(refs ResolvedRefs, field string) *int {
	if id, ok := refs[field]; ok && id > 0 {
		return &id
	}
	return nil
}

func baseView(b models.SyncBase) map[string]any {
	return map[string]any{
		"clientId":        b.ClientId,
		"clientCreatedAt": wireTime(b.CreatedAt),
		"clientUpdatedAt": wireTime(b.UpdatedAt),
	}
}

func eventDate(rec SyncRecord) time.Time {
	return TimeField(rec.Fields, "eventDate", rec.ClientCreatedAt)
}

// farmPhone looks up a farm's contact number for notifications, bypassing
// the farmer scope guard because the destination farm of a transfer can
// belong to somebody else.
func farmPhone(ctx context.Context, env *Env, farmId int) string {
	lookupCtx := utils.SetSkipFarmScopeInContext(ctx, true)
	var phone string
	err := env.DB.WithContext(lookupCtx).
		Model(&models.Farm{}).
		Where("id = ?", farmId).
		Pluck("phone", &phone).Error
	if err != nil || phone == "" {
		return ""
	}
	return utils.NormalizePhoneNumber(phone, defaultPhoneRegion())
}

func defaultPhoneRegion() string {
	return "MM"
}

func farmsDescriptor() Descriptor[models.Farm] {
	return Descriptor[models.Farm]{
		Type:      EntityFarms,
		Order:     10,
		PushRoles: farmerPush,
		Lookups: []LookupSpec{
			{Field: "townshipId", Table: "townships"},
		},
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Farm, error) {
			name := StringField(rec.Fields, "name")
			if name == "" {
				return models.Farm{}, errors.New("farm without name")
			}
			return models.Farm{
				SyncBase:   base,
				Name:       name,
				Address:    StringField(rec.Fields, "address"),
				TownshipId: optRef(refs, "townshipId"),
				Phone:      StringField(rec.Fields, "phone"),
				Latitude:   FloatField(rec.Fields, "latitude"),
				Longitude:  FloatField(rec.Fields, "longitude"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"name":        StringField(rec.Fields, "name"),
				"address":     StringField(rec.Fields, "address"),
				"township_id": optRef(refs, "townshipId"),
				"phone":       StringField(rec.Fields, "phone"),
				"latitude":    FloatField(rec.Fields, "latitude"),
				"longitude":   FloatField(rec.Fields, "longitude"),
			}
		},
		View: func(row models.Farm, look *RefLookup) map[string]any {
			v := baseView(row.SyncBase)
			v["name"] = row.Name
			v["address"] = row.Address
			v["townshipId"] = row.TownshipId
			v["phone"] = row.Phone
			v["latitude"] = row.Latitude
			v["longitude"] = row.Longitude
			return v
		},
	}
}

func shedsDescriptor() Descriptor[models.Shed] {
	return Descriptor[models.Shed]{
		Type:      EntitySheds,
		Order:     20,
		PushRoles: farmerPush,
		FarmRef:   "farmClientId",
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Shed, error) {
			name := StringField(rec.Fields, "name")
			if name == "" {
				return models.Shed{}, errors.New("shed without name")
			}
			return models.Shed{
				SyncBase: base,
				FarmId:   refs["farmClientId"],
				Name:     name,
				ShedType: StringField(rec.Fields, "shedType"),
				Capacity: IntField(rec.Fields, "capacity"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"farm_id":   refs["farmClientId"],
				"name":      StringField(rec.Fields, "name"),
				"shed_type": StringField(rec.Fields, "shedType"),
				"capacity":  IntField(rec.Fields, "capacity"),
			}
		},
		View: func(row models.Shed, look *RefLookup) map[string]any {
			v := baseView(row.SyncBase)
			v["farmClientId"] = look.Farm(row.FarmId)
			v["name"] = row.Name
			v["shedType"] = row.ShedType
			v["capacity"] = row.Capacity
			return v
		},
	}
}

func livestockDescriptor() Descriptor[models.Livestock] {
	return Descriptor[models.Livestock]{
		Type:      EntityLivestock,
		Order:     30,
		PushRoles: farmerPush,
		FarmRef:   "farmClientId",
		ExtraRefs: []RefSpec{
			{Field: "shedClientId", Target: EntitySheds, Column: "shed_id"},
			{Field: "motherClientId", Target: EntityLivestock, Column: "mother_id"},
		},
		SoftDelete: true,
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Livestock, error) {
			return models.Livestock{
				SyncBase:    base,
				FarmId:      refs["farmClientId"],
				ShedId:      optRef(refs, "shedClientId"),
				MotherId:    optRef(refs, "motherClientId"),
				TagNumber:   StringField(rec.Fields, "tagNumber"),
				Name:        StringField(rec.Fields, "name"),
				Species:     StringField(rec.Fields, "species"),
				Breed:       StringField(rec.Fields, "breed"),
				Gender:      StringField(rec.Fields, "gender"),
				Color:       StringField(rec.Fields, "color"),
				DateOfBirth: TimePtrField(rec.Fields, "dateOfBirth"),
				Status:      livestockStatus(rec),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"farm_id":       refs["farmClientId"],
				"shed_id":       optRef(refs, "shedClientId"),
				"mother_id":     optRef(refs, "motherClientId"),
				"tag_number":    StringField(rec.Fields, "tagNumber"),
				"name":          StringField(rec.Fields, "name"),
				"species":       StringField(rec.Fields, "species"),
				"breed":         StringField(rec.Fields, "breed"),
				"gender":        StringField(rec.Fields, "gender"),
				"color":         StringField(rec.Fields, "color"),
				"date_of_birth": TimePtrField(rec.Fields, "dateOfBirth"),
				"status":        livestockStatus(rec),
			}
		},
		View: func(row models.Livestock, look *RefLookup) map[string]any {
			v := baseView(row.SyncBase)
			v["farmClientId"] = look.Farm(row.FarmId)
			v["shedClientId"] = look.Shed(row.ShedId)
			v["motherClientId"] = look.Mother(row.MotherId)
			v["tagNumber"] = row.TagNumber
			v["name"] = row.Name
			v["species"] = row.Species
			v["breed"] = row.Breed
			v["gender"] = row.Gender
			v["color"] = row.Color
			v["dateOfBirth"] = wireTimePtr(row.DateOfBirth)
			v["photoUrl"] = row.PhotoUrl
			v["status"] = row.Status
			return v
		},
	}
}

func livestockStatus(rec SyncRecord) models.LivestockStatus {
	switch s := models.LivestockStatus(StringField(rec.Fields, "status")); s {
	case models.LivestockStatusActive, models.LivestockStatusSold, models.LivestockStatusDead:
		return s
	}
	return models.LivestockStatusActive
}

func birthsDescriptor() Descriptor[models.Birth] {
	return Descriptor[models.Birth]{
		Type:         EntityBirths,
		Order:        40,
		PushRoles:    farmerPush,
		LivestockRef: "livestockClientId",
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Birth, error) {
			return models.Birth{
				SyncBase:    base,
				FarmId:      refs["farmClientId"],
				LivestockId: refs["livestockClientId"],
				EventDate:   eventDate(rec),
				CalfTag:     StringField(rec.Fields, "calfTag"),
				CalfGender:  StringField(rec.Fields, "calfGender"),
				BirthWeight: DecimalField(rec.Fields, "birthWeight"),
				Note:        StringField(rec.Fields, "note"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"event_date":   eventDate(rec),
				"calf_tag":     StringField(rec.Fields, "calfTag"),
				"calf_gender":  StringField(rec.Fields, "calfGender"),
				"birth_weight": DecimalField(rec.Fields, "birthWeight"),
				"note":         StringField(rec.Fields, "note"),
			}
		},
		View: func(row models.Birth, look *RefLookup) map[string]any {
			v := eventView(row.SyncBase, row.FarmId, row.LivestockId, row.EventDate, look)
			v["calfTag"] = row.CalfTag
			v["calfGender"] = row.CalfGender
			v["birthWeight"] = row.BirthWeight
			v["note"] = row.Note
			return v
		},
		AfterCreate: func(ctx context.Context, env *Env, row models.Birth) {
			phone := farmPhone(ctx, env, row.FarmId)
			msg := "New birth recorded at your farm"
			if row.CalfTag != "" {
				msg = fmt.Sprintf("New birth recorded at your farm, calf tag %s", row.CalfTag)
			}
			env.Notifier.Notify(ctx, "birth", phone, msg)
		},
	}
}

func deathsDescriptor() Descriptor[models.Death] {
	return Descriptor[models.Death]{
		Type:         EntityDeaths,
		Order:        41,
		PushRoles:    farmerPush,
		LivestockRef: "livestockClientId",
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Death, error) {
			return models.Death{
				SyncBase:    base,
				FarmId:      refs["farmClientId"],
				LivestockId: refs["livestockClientId"],
				EventDate:   eventDate(rec),
				Cause:       StringField(rec.Fields, "cause"),
				Note:        StringField(rec.Fields, "note"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"event_date": eventDate(rec),
				"cause":      StringField(rec.Fields, "cause"),
				"note":       StringField(rec.Fields, "note"),
			}
		},
		View: func(row models.Death, look *RefLookup) map[string]any {
			v := eventView(row.SyncBase, row.FarmId, row.LivestockId, row.EventDate, look)
			v["cause"] = row.Cause
			v["note"] = row.Note
			return v
		},
	}
}

func transfersDescriptor() Descriptor[models.Transfer] {
	return Descriptor[models.Transfer]{
		Type:         EntityTransfers,
		Order:        42,
		PushRoles:    farmerPush,
		LivestockRef: "livestockClientId",
		ExtraRefs: []RefSpec{
			// The destination may be another farmer's farm, so it resolves
			// globally and is never overridden into the pusher's scope.
			{Field: "toFarmClientId", Target: EntityFarms, Column: "to_farm_id", Required: true},
		},
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Transfer, error) {
			return models.Transfer{
				SyncBase:    base,
				FarmId:      refs["farmClientId"],
				LivestockId: refs["livestockClientId"],
				ToFarmId:    refs["toFarmClientId"],
				EventDate:   eventDate(rec),
				Note:        StringField(rec.Fields, "note"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"to_farm_id": refs["toFarmClientId"],
				"event_date": eventDate(rec),
				"note":       StringField(rec.Fields, "note"),
			}
		},
		View: func(row models.Transfer, look *RefLookup) map[string]any {
			v := eventView(row.SyncBase, row.FarmId, row.LivestockId, row.EventDate, look)
			v["toFarmClientId"] = look.FarmOpt(row.ToFarmId)
			v["note"] = row.Note
			return v
		},
		AfterCreate: func(ctx context.Context, env *Env, row models.Transfer) {
			phone := farmPhone(ctx, env, row.ToFarmId)
			env.Notifier.Notify(ctx, "transfer", phone, "An animal was transferred to your farm")
		},
	}
}

func salesDescriptor() Descriptor[models.Sale] {
	return Descriptor[models.Sale]{
		Type:         EntitySales,
		Order:        43,
		PushRoles:    farmerPush,
		LivestockRef: "livestockClientId",
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Sale, error) {
			return models.Sale{
				SyncBase:    base,
				FarmId:      refs["farmClientId"],
				LivestockId: refs["livestockClientId"],
				EventDate:   eventDate(rec),
				BuyerName:   StringField(rec.Fields, "buyerName"),
				Price:       DecimalField(rec.Fields, "price"),
				Note:        StringField(rec.Fields, "note"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"event_date": eventDate(rec),
				"buyer_name": StringField(rec.Fields, "buyerName"),
				"price":      DecimalField(rec.Fields, "price"),
				"note":       StringField(rec.Fields, "note"),
			}
		},
		View: func(row models.Sale, look *RefLookup) map[string]any {
			v := eventView(row.SyncBase, row.FarmId, row.LivestockId, row.EventDate, look)
			v["buyerName"] = row.BuyerName
			v["price"] = row.Price
			v["note"] = row.Note
			return v
		},
	}
}

func vaccinationsDescriptor() Descriptor[models.Vaccination] {
	return Descriptor[models.Vaccination]{
		Type:         EntityVaccinations,
		Order:        44,
		PushRoles:    healthPush,
		LivestockRef: "livestockClientId",
		Lookups: []LookupSpec{
			{Field: "vaccineId", Table: "vaccines"},
		},
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Vaccination, error) {
			return models.Vaccination{
				SyncBase:    base,
				FarmId:      refs["farmClientId"],
				LivestockId: refs["livestockClientId"],
				EventDate:   eventDate(rec),
				VaccineId:   optRef(refs, "vaccineId"),
				VaccineName: StringField(rec.Fields, "vaccineName"),
				Dose:        StringField(rec.Fields, "dose"),
				VetName:     StringField(rec.Fields, "vetName"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"event_date":   eventDate(rec),
				"vaccine_id":   optRef(refs, "vaccineId"),
				"vaccine_name": StringField(rec.Fields, "vaccineName"),
				"dose":         StringField(rec.Fields, "dose"),
				"vet_name":     StringField(rec.Fields, "vetName"),
			}
		},
		View: func(row models.Vaccination, look *RefLookup) map[string]any {
			v := eventView(row.SyncBase, row.FarmId, row.LivestockId, row.EventDate, look)
			v["vaccineId"] = row.VaccineId
			v["vaccineName"] = row.VaccineName
			v["dose"] = row.Dose
			v["vetName"] = row.VetName
			return v
		},
	}
}

func dewormingsDescriptor() Descriptor[models.Deworming] {
	return Descriptor[models.Deworming]{
		Type:         EntityDewormings,
		Order:        45,
		PushRoles:    healthPush,
		LivestockRef: "livestockClientId",
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Deworming, error) {
			return models.Deworming{
				SyncBase:     base,
				FarmId:       refs["farmClientId"],
				LivestockId:  refs["livestockClientId"],
				EventDate:    eventDate(rec),
				MedicineName: StringField(rec.Fields, "medicineName"),
				Dose:         StringField(rec.Fields, "dose"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"event_date":    eventDate(rec),
				"medicine_name": StringField(rec.Fields, "medicineName"),
				"dose":          StringField(rec.Fields, "dose"),
			}
		},
		View: func(row models.Deworming, look *RefLookup) map[string]any {
			v := eventView(row.SyncBase, row.FarmId, row.LivestockId, row.EventDate, look)
			v["medicineName"] = row.MedicineName
			v["dose"] = row.Dose
			return v
		},
	}
}

func treatmentsDescriptor() Descriptor[models.Treatment] {
	return Descriptor[models.Treatment]{
		Type:         EntityTreatments,
		Order:        46,
		PushRoles:    healthPush,
		LivestockRef: "livestockClientId",
		Lookups: []LookupSpec{
			{Field: "diseaseId", Table: "diseases"},
		},
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Treatment, error) {
			return models.Treatment{
				SyncBase:    base,
				FarmId:      refs["farmClientId"],
				LivestockId: refs["livestockClientId"],
				EventDate:   eventDate(rec),
				DiseaseId:   optRef(refs, "diseaseId"),
				Diagnosis:   StringField(rec.Fields, "diagnosis"),
				Medicine:    StringField(rec.Fields, "medicine"),
				Cost:        DecimalField(rec.Fields, "cost"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"event_date": eventDate(rec),
				"disease_id": optRef(refs, "diseaseId"),
				"diagnosis":  StringField(rec.Fields, "diagnosis"),
				"medicine":   StringField(rec.Fields, "medicine"),
				"cost":       DecimalField(rec.Fields, "cost"),
			}
		},
		View: func(row models.Treatment, look *RefLookup) map[string]any {
			v := eventView(row.SyncBase, row.FarmId, row.LivestockId, row.EventDate, look)
			v["diseaseId"] = row.DiseaseId
			v["diagnosis"] = row.Diagnosis
			v["medicine"] = row.Medicine
			v["cost"] = row.Cost
			return v
		},
	}
}

func pregnancyChecksDescriptor() Descriptor[models.PregnancyCheck] {
	return Descriptor[models.PregnancyCheck]{
		Type:         EntityPregnancyChecks,
		Order:        47,
		PushRoles:    healthPush,
		LivestockRef: "livestockClientId",
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.PregnancyCheck, error) {
			result, err := pregnancyResult(rec)
			if err != nil {
				return models.PregnancyCheck{}, err
			}
			return models.PregnancyCheck{
				SyncBase:    base,
				FarmId:      refs["farmClientId"],
				LivestockId: refs["livestockClientId"],
				EventDate:   eventDate(rec),
				Result:      result,
				Method:      StringField(rec.Fields, "method"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			m := map[string]any{
				"event_date": eventDate(rec),
				"method":     StringField(rec.Fields, "method"),
			}
			if result, err := pregnancyResult(rec); err == nil {
				m["result"] = result
			}
			return m
		},
		View: func(row models.PregnancyCheck, look *RefLookup) map[string]any {
			v := eventView(row.SyncBase, row.FarmId, row.LivestockId, row.EventDate, look)
			v["result"] = row.Result
			v["method"] = row.Method
			return v
		},
	}
}

func pregnancyResult(rec SyncRecord) (models.PregnancyResult, error) {
	switch r := models.PregnancyResult(StringField(rec.Fields, "result")); r {
	case models.PregnancyResultPregnant, models.PregnancyResultEmpty, models.PregnancyResultDoubtful:
		return r, nil
	default:
		return "", fmt.Errorf("unknown pregnancy result %q", r)
	}
}

func milkingsDescriptor() Descriptor[models.Milking] {
	return Descriptor[models.Milking]{
		Type:         EntityMilkings,
		Order:        48,
		PushRoles:    farmerPush,
		LivestockRef: "livestockClientId",
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Milking, error) {
			session, err := milkSession(rec)
			if err != nil {
				return models.Milking{}, err
			}
			return models.Milking{
				SyncBase:       base,
				FarmId:         refs["farmClientId"],
				LivestockId:    refs["livestockClientId"],
				EventDate:      eventDate(rec),
				Session:        session,
				QuantityLiters: DecimalField(rec.Fields, "quantityLiters"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			m := map[string]any{
				"event_date":      eventDate(rec),
				"quantity_liters": DecimalField(rec.Fields, "quantityLiters"),
			}
			if session, err := milkSession(rec); err == nil {
				m["session"] = session
			}
			return m
		},
		View: func(row models.Milking, look *RefLookup) map[string]any {
			v := eventView(row.SyncBase, row.FarmId, row.LivestockId, row.EventDate, look)
			v["session"] = row.Session
			v["quantityLiters"] = row.QuantityLiters
			return v
		},
	}
}

func milkSession(rec SyncRecord) (models.MilkSession, error) {
	switch s := models.MilkSession(StringField(rec.Fields, "session")); s {
	case models.MilkSessionMorning, models.MilkSessionEvening:
		return s, nil
	default:
		return "", fmt.Errorf("unknown milk session %q", s)
	}
}

func weightsDescriptor() Descriptor[models.Weight] {
	return Descriptor[models.Weight]{
		Type:         EntityWeights,
		Order:        49,
		PushRoles:    farmerPush,
		LivestockRef: "livestockClientId",
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Weight, error) {
			return models.Weight{
				SyncBase:    base,
				FarmId:      refs["farmClientId"],
				LivestockId: refs["livestockClientId"],
				EventDate:   eventDate(rec),
				WeightKg:    DecimalField(rec.Fields, "weightKg"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"event_date": eventDate(rec),
				"weight_kg":  DecimalField(rec.Fields, "weightKg"),
			}
		},
		View: func(row models.Weight, look *RefLookup) map[string]any {
			v := eventView(row.SyncBase, row.FarmId, row.LivestockId, row.EventDate, look)
			v["weightKg"] = row.WeightKg
			return v
		},
	}
}

func inseminationsDescriptor() Descriptor[models.Insemination] {
	return Descriptor[models.Insemination]{
		Type:         EntityInseminations,
		Order:        50,
		PushRoles:    farmerPush,
		LivestockRef: "livestockClientId",
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Insemination, error) {
			return models.Insemination{
				SyncBase:    base,
				FarmId:      refs["farmClientId"],
				LivestockId: refs["livestockClientId"],
				EventDate:   eventDate(rec),
				SemenCode:   StringField(rec.Fields, "semenCode"),
				Technician:  StringField(rec.Fields, "technician"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"event_date": eventDate(rec),
				"semen_code": StringField(rec.Fields, "semenCode"),
				"technician": StringField(rec.Fields, "technician"),
			}
		},
		View: func(row models.Insemination, look *RefLookup) map[string]any {
			v := eventView(row.SyncBase, row.FarmId, row.LivestockId, row.EventDate, look)
			v["semenCode"] = row.SemenCode
			v["technician"] = row.Technician
			return v
		},
	}
}

func dryOffsDescriptor() Descriptor[models.DryOff] {
	return Descriptor[models.DryOff]{
		Type:         EntityDryOffs,
		Order:        51,
		PushRoles:    farmerPush,
		LivestockRef: "livestockClientId",
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.DryOff, error) {
			return models.DryOff{
				SyncBase:            base,
				FarmId:              refs["farmClientId"],
				LivestockId:         refs["livestockClientId"],
				EventDate:           eventDate(rec),
				ExpectedCalvingDate: TimePtrField(rec.Fields, "expectedCalvingDate"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"event_date":            eventDate(rec),
				"expected_calving_date": TimePtrField(rec.Fields, "expectedCalvingDate"),
			}
		},
		View: func(row models.DryOff, look *RefLookup) map[string]any {
			v := eventView(row.SyncBase, row.FarmId, row.LivestockId, row.EventDate, look)
			v["expectedCalvingDate"] = wireTimePtr(row.ExpectedCalvingDate)
			return v
		},
	}
}

func heatsDescriptor() Descriptor[models.Heat] {
	return Descriptor[models.Heat]{
		Type:         EntityHeats,
		Order:        52,
		PushRoles:    farmerPush,
		LivestockRef: "livestockClientId",
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Heat, error) {
			return models.Heat{
				SyncBase:    base,
				FarmId:      refs["farmClientId"],
				LivestockId: refs["livestockClientId"],
				EventDate:   eventDate(rec),
				Sign:        StringField(rec.Fields, "sign"),
				Note:        StringField(rec.Fields, "note"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"event_date": eventDate(rec),
				"sign":       StringField(rec.Fields, "sign"),
				"note":       StringField(rec.Fields, "note"),
			}
		},
		View: func(row models.Heat, look *RefLookup) map[string]any {
			v := eventView(row.SyncBase, row.FarmId, row.LivestockId, row.EventDate, look)
			v["sign"] = row.Sign
			v["note"] = row.Note
			return v
		},
	}
}

func expensesDescriptor() Descriptor[models.Expense] {
	return Descriptor[models.Expense]{
		Type:      EntityExpenses,
		Order:     53,
		PushRoles: farmerPush,
		FarmRef:   "farmClientId",
		Decode: func(rec SyncRecord, refs ResolvedRefs, base models.SyncBase) (models.Expense, error) {
			return models.Expense{
				SyncBase:   base,
				FarmId:     refs["farmClientId"],
				EventDate:  eventDate(rec),
				Category:   StringField(rec.Fields, "category"),
				Amount:     DecimalField(rec.Fields, "amount"),
				BillNumber: StringField(rec.Fields, "billNumber"),
				Note:       StringField(rec.Fields, "note"),
			}, nil
		},
		Updates: func(rec SyncRecord, refs ResolvedRefs) map[string]any {
			return map[string]any{
				"farm_id":     refs["farmClientId"],
				"event_date":  eventDate(rec),
				"category":    StringField(rec.Fields, "category"),
				"amount":      DecimalField(rec.Fields, "amount"),
				"bill_number": StringField(rec.Fields, "billNumber"),
				"note":        StringField(rec.Fields, "note"),
			}
		},
		View: func(row models.Expense, look *RefLookup) map[string]any {
			v := baseView(row.SyncBase)
			v["farmClientId"] = look.Farm(row.FarmId)
			v["eventDate"] = wireTime(row.EventDate)
			v["category"] = row.Category
			v["amount"] = row.Amount
			v["billNumber"] = row.BillNumber
			v["note"] = row.Note
			return v
		},
	}
}

func eventView(b models.SyncBase, farmId, livestockId int, date time.Time, look *RefLookup) map[string]any {
	v := baseView(b)
	v["farmClientId"] = look.Farm(farmId)
	v["livestockClientId"] = look.Livestock(livestockId)
	v["eventDate"] = wireTime(date)
	return v
}
