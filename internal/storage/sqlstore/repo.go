package sqlstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel_booking/internal/domain"
)

type Repo struct{ db *gorm.DB }

func New(db *gorm.DB) *Repo { return &Repo{db: db} }

/********** hotels **********/

func (r *Repo) CreateHotel(ctx context.Context, h *domain.Hotel) error {
	row := toHotelRow(h)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	h.CreatedAt, h.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *Repo) UpdateHotel(ctx context.Context, h *domain.Hotel) error {
	row := toHotelRow(h)
	res := r.db.WithContext(ctx).Model(&row).Select("*").Omit("id", "created_at", clause.Associations).Updates(&row)
	if err := r.updated(ctx, res, &hotelRow{}, row.ID); err != nil {
		return err
	}
	h.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *Repo) DeleteHotel(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&hotelRow{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		var roomIDs []string
		if err := tx.Model(&roomRow{}).Where("hotel_id = ?", id).Pluck("id", &roomIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("hotel_id = ?", id).Delete(&bookingRow{}).Error; err != nil {
			return err
		}
		if len(roomIDs) > 0 {
			if err := tx.Where("room_id IN ?", roomIDs).Delete(&bookingRow{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("hotel_id = ?", id).Delete(&roomRow{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&hotelRow{}).Error
	})
}

func (r *Repo) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	var row hotelRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return domain.Hotel{}, translate(err)
	}
	var rooms []roomRow
	if err := r.db.WithContext(ctx).Where("hotel_id = ?", id).Order("room_number").Find(&rooms).Error; err != nil {
		return domain.Hotel{}, err
	}
	h := row.toDomain()
	h.Rooms = make([]domain.Room, 0, len(rooms))
	for _, rr := range rooms {
		h.Rooms = append(h.Rooms, rr.toDomain())
	}
	return h, nil
}

// ListHotels returns hotels newest first, each with its rooms, in two queries.
func (r *Repo) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	var rows []hotelRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Hotel, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	var rooms []roomRow
	if err := r.db.WithContext(ctx).Where("hotel_id IN ?", ids).Order("room_number").Find(&rooms).Error; err != nil {
		return nil, err
	}
	byHotel := make(map[string][]domain.Room, len(rows))
	for _, rr := range rooms {
		byHotel[rr.HotelID] = append(byHotel[rr.HotelID], rr.toDomain())
	}
	for _, row := range rows {
		h := row.toDomain()
		h.Rooms = byHotel[row.ID]
		if h.Rooms == nil {
			h.Rooms = []domain.Room{}
		}
		out = append(out, h)
	}
	return out, nil
}

// HotelNameTaken is a case-sensitive match even under MySQL's default
// case-insensitive collation: candidates are compared again in Go.
func (r *Repo) HotelNameTaken(ctx context.Context, name, exceptID string) (bool, error) {
	var rows []hotelRow
	q := r.db.WithContext(ctx).Select("id", "name").Where("name = ?", name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Find(&rows).Error; err != nil {
		return false, err
	}
	for _, row := range rows {
		if row.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repo) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.exists(ctx, &hotelRow{}, "slug = ?", slug)
}

/********** rooms **********/

func (r *Repo) CreateRoom(ctx context.Context, m *domain.Room) error {
	row := toRoomRow(m)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	m.CreatedAt, m.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *Repo) UpdateRoom(ctx context.Context, m *domain.Room) error {
	row := toRoomRow(m)
	res := r.db.WithContext(ctx).Model(&row).Select("*").Omit("id", "created_at", clause.Associations).Updates(&row)
	if err := r.updated(ctx, res, &roomRow{}, row.ID); err != nil {
		return err
	}
	m.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *Repo) DeleteRoom(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&roomRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Where("room_id = ?", id).Delete(&bookingRow{}).Error
	})
}

func (r *Repo) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	var row roomRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return domain.Room{}, translate(err)
	}
	return row.toDomain(), nil
}

func (r *Repo) ListRooms(ctx context.Context) ([]domain.Room, error) {
	var rows []roomRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Room, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

/********** bookings **********/

func (r *Repo) CreateBooking(ctx context.Context, b *domain.Booking) error {
	row := toBookingRow(b)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	b.CreatedAt, b.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *Repo) UpdateBooking(ctx context.Context, b *domain.Booking) error {
	row := toBookingRow(b)
	res := r.db.WithContext(ctx).Model(&row).Select("*").Omit("id", "created_at", clause.Associations).Updates(&row)
	if err := r.updated(ctx, res, &bookingRow{}, row.ID); err != nil {
		return err
	}
	b.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *Repo) DeleteBooking(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&bookingRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) GetBooking(ctx context.Context, id string) (domain.Booking, error) {
	var row bookingRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return domain.Booking{}, translate(err)
	}
	return row.toDomain(), nil
}

func (r *Repo) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	var rows []bookingRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

/********** users **********/

func (r *Repo) CreateUser(ctx context.Context, u *domain.User) error {
	row := toUserRow(u)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(err)
	}
	u.CreatedAt, u.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *Repo) UpdateUser(ctx context.Context, u *domain.User) error {
	row := toUserRow(u)
	res := r.db.WithContext(ctx).Model(&row).Select("*").Omit("id", "created_at", clause.Associations).Updates(&row)
	if err := r.updated(ctx, res, &userRow{}, row.ID); err != nil {
		return err
	}
	u.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *Repo) DeleteUser(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&userRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.Where("user_id = ?", id).Delete(&bookingRow{}).Error
	})
}

func (r *Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return domain.User{}, translate(err)
	}
	return row.toDomain(), nil
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		return domain.User{}, translate(err)
	}
	return row.toDomain(), nil
}

func (r *Repo) ListUsers(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *Repo) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, &userRow{}, "username = ?", username)
}

func (r *Repo) EmailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	if exceptID == "" {
		return r.exists(ctx, &userRow{}, "email = ?", email)
	}
	return r.exists(ctx, &userRow{}, "email = ? AND id <> ?", email, exceptID)
}

// updated checks an UPDATE's outcome. Zero affected rows is ErrNotFound
// only when the row is really gone, since MySQL does not count unchanged rows.
func (r *Repo) updated(ctx context.Context, res *gorm.DB, model any, id string) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	ok, err := r.exists(ctx, model, "id = ?", id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) exists(ctx context.Context, model any, where string, args ...any) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where(where, args...).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ domain.Repository = (*Repo)(nil)
