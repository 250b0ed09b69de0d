package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema is the admissions data model. Every statement is idempotent so the
// migration can run on every startup. The database enforces referential
// integrity, email uniqueness, one course offering per academic year, one
// application per applicant, non-negative slots and the closed set of
// admission outcome types; cross-row rules that a constraint cannot express
// (single active year, status cascades) live in the repositories.
const Schema = `
CREATE TABLE IF NOT EXISTS applicants (
  applicant_id INT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  full_name VARCHAR(255) NOT NULL,
  address TEXT NOT NULL,
  contact_number VARCHAR(20),
  email VARCHAR(255) UNIQUE NOT NULL,
  sex VARCHAR(10) NOT NULL,
  password TEXT NOT NULL,
  birthdate DATE NOT NULL
);

CREATE TABLE IF NOT EXISTS courses (
  course_id INT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  course_name VARCHAR(255) NOT NULL
);

CREATE TABLE IF NOT EXISTS academic_year (
  academic_year_id INT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  year_range VARCHAR(20) NOT NULL,
  active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS course_status (
  course_status_id INT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  course_id INT NOT NULL,
  academic_year_id INT NOT NULL,
  slots INT NOT NULL CHECK (slots >= 0),
  status VARCHAR(50) NOT NULL,
  created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
  updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
  CONSTRAINT fk_course FOREIGN KEY (course_id) REFERENCES courses(course_id),
  CONSTRAINT fk_academic_year FOREIGN KEY (academic_year_id) REFERENCES academic_year(academic_year_id),
  CONSTRAINT unique_course_status_per_year UNIQUE (course_id, academic_year_id)
);

CREATE OR REPLACE FUNCTION update_course_status_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
  NEW.updated_at = NOW();
  RETURN NEW;
END;
$$ LANGUAGE plpgsql;

CREATE OR REPLACE TRIGGER update_course_status_updated_at
BEFORE UPDATE ON course_status
FOR EACH ROW
EXECUTE FUNCTION update_course_status_updated_at_column();

CREATE TABLE IF NOT EXISTS admission_records (
  admission_record_id INT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  course_status_id INT NOT NULL,
  type VARCHAR(50) NOT NULL CHECK (type IN ('Passed', 'NotPassed', 'NoShow')),
  created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
  CONSTRAINT fk_course_status FOREIGN KEY (course_status_id) REFERENCES course_status(course_status_id)
);

CREATE TABLE IF NOT EXISTS applications (
  application_id INT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  applicant_id INT NOT NULL,
  course_status_id INT NOT NULL,
  admission_record_id INT,
  application_status VARCHAR(50) NOT NULL DEFAULT 'Pending',
  application_date DATE NOT NULL DEFAULT CURRENT_DATE,
  remarks VARCHAR,
  schedule_start TIMESTAMPTZ,
  schedule_end TIMESTAMPTZ,
  document_one_ext VARCHAR(10),
  document_two_ext VARCHAR(10),
  CONSTRAINT fk_applicant FOREIGN KEY (applicant_id) REFERENCES applicants(applicant_id),
  CONSTRAINT fk_course_status FOREIGN KEY (course_status_id) REFERENCES course_status(course_status_id),
  CONSTRAINT fk_admission_record FOREIGN KEY (admission_record_id) REFERENCES admission_records(admission_record_id),
  CONSTRAINT unique_application_per_applicant UNIQUE (applicant_id)
);

CREATE TABLE IF NOT EXISTS staffs (
  staff_id INT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  full_name VARCHAR(255) NOT NULL,
  sex VARCHAR(10) NOT NULL,
  email VARCHAR(255) NOT NULL UNIQUE,
  password VARCHAR(255) NOT NULL
);
`

// Named unique constraints the repositories translate into Conflict errors.
const (
	ConstraintCourseStatusPerYear      = "unique_course_status_per_year"
	ConstraintApplicationPerApplicant  = "unique_application_per_applicant"
	ConstraintApplicantEmail           = "applicants_email_key"
	ConstraintStaffEmail               = "staffs_email_key"
)

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
